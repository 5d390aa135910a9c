// Package rcerr defines the closed error-kind taxonomy used across the
// retrieval core so call sites can branch on kind with errors.As instead of
// matching error strings.
package rcerr

import "fmt"

// Kind is one of the error kinds named in the error handling design.
type Kind string

const (
	KindConfig          Kind = "config"
	KindCancelled       Kind = "cancelled"
	KindDeadline        Kind = "deadline"
	KindNetwork         Kind = "network"
	KindParse           Kind = "parse"
	KindProviderReject  Kind = "provider-reject"
	KindProviderFailure Kind = "provider-failure"
	KindArtifactIO      Kind = "artifact-io"
	KindInternal        Kind = "internal"
)

// Classified wraps an underlying error with a Kind so callers can recover it
// via errors.As without depending on error message text.
type Classified struct {
	Kind Kind
	Err  error
}

func (c *Classified) Error() string {
	if c.Err == nil {
		return string(c.Kind)
	}
	return fmt.Sprintf("%s: %v", c.Kind, c.Err)
}

func (c *Classified) Unwrap() error { return c.Err }

// Wrap returns a Classified error of the given kind. A nil err returns nil.
func Wrap(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Classified{Kind: kind, Err: err}
}

// Is reports whether err (or any error in its chain) carries the given kind.
func Is(err error, kind Kind) bool {
	var c *Classified
	for err != nil {
		if cl, ok := err.(*Classified); ok {
			c = cl
			if c.Kind == kind {
				return true
			}
			err = c.Err
			continue
		}
		break
	}
	return false
}

// Soft reports whether the kind never propagates as a fatal run failure
// (provider-reject and provider-failure per the propagation policy).
func Soft(kind Kind) bool {
	return kind == KindProviderReject || kind == KindProviderFailure
}
