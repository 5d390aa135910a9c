// Package connectors implements the four upstream search providers (L1):
// Web Search, Web News RSS, News API, and Event Registry. Each connector is
// a pure function (query, config, options) -> ConnectorResult and accepts
// already-normalized query inputs so it stays unit-testable without
// mocking internal/normalize.
package connectors

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/hyperifyio/retrievalcore/internal/model"
)

// Options carries per-run, per-connector-call parameters: cancellation and
// the recency window.
type Options struct {
	Signal       context.Context
	RecencyHours float64
}

// Metrics is the subset of ProviderMetrics a connector can observe about
// its own call: whether it was disabled, a catastrophic failure, the
// query it issued, and how many candidates it pre-filtered.
type Metrics struct {
	Disabled    bool
	Failed      bool
	Error       string
	Query       string
	PreFiltered int
}

// Result is what a connector call returns.
type Result struct {
	Provider  model.Provider
	FetchedAt time.Time
	Query     string
	Items     []model.Candidate
	Metrics   Metrics
}

// Connector is implemented by every upstream provider adapter.
type Connector interface {
	Provider() model.Provider
	Fetch(ctx context.Context, opt Options) Result
}

// SafeFetch wraps a connector call so a panicking or misbehaving connector
// can never fail the run: it recovers any panic and converts it into the
// same synthetic failure shape a well-behaved connector would return for a
// catastrophic upstream error (§4.2 contract item 4, §4.6 step 2).
func SafeFetch(ctx context.Context, c Connector, opt Options) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = Result{
				Provider:  c.Provider(),
				FetchedAt: time.Now(),
				Metrics: Metrics{
					Failed: true,
					Error:  errString(r),
				},
			}
		}
	}()
	return c.Fetch(ctx, opt)
}

// CandidateID derives a Candidate's id deterministically from its URL
// (§3), the same sha256-of-string idiom the extractor uses for the
// NormalizedArticle it eventually produces. The extractor recomputes the
// final id from the canonical URL once redirects and canonical links are
// resolved; this pre-extraction id only needs to be stable and unique per
// raw URL so downstream queueing (internal/orchestrator/queue.go) can key
// on it.
func CandidateID(url string) string {
	h := sha256.Sum256([]byte(url))
	return hex.EncodeToString(h[:])
}

func errString(r any) string {
	if err, ok := r.(error); ok {
		return err.Error()
	}
	switch v := r.(type) {
	case string:
		return v
	default:
		return "panic in connector"
	}
}
