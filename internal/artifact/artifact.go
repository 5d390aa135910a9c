// Package artifact implements the artifact store capability from §6: four
// idempotent, write-only persistence operations used by the orchestrator to
// snapshot raw connector output, normalized articles, and whole-run
// artifacts (cluster sets, metrics) to a configured root directory.
package artifact

import (
	"github.com/hyperifyio/retrievalcore/internal/model"
)

// Store is the capability the orchestrator depends on. Implementations must
// be safe for concurrent use: the orchestrator calls these from many
// extraction workers and connector fan-out goroutines at once.
type Store interface {
	// EnsureLayout creates whatever directory structure the implementation
	// needs. Called once at run setup; safe to call repeatedly.
	EnsureLayout() error

	// SaveRawProviderSnapshot persists one connector's raw result for a run,
	// before candidate normalization. Best-effort from the orchestrator's
	// point of view: a failure here is logged, never fatal (§4.6 step 2).
	SaveRawProviderSnapshot(provider model.Provider, runID string, payload any) error

	// SaveNormalizedArticle persists one article after extraction.
	SaveNormalizedArticle(articleID string, payload any) error

	// SaveRunArtifact persists a whole-run artifact (cluster set, metrics
	// summary, ...) identified by a caller-chosen kind string.
	SaveRunArtifact(runID string, kind string, payload any) error
}
