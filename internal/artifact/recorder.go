package artifact

import (
	"sync"

	"github.com/hyperifyio/retrievalcore/internal/model"
)

// Recorder is an in-memory Store for tests and for orchestrator dry-runs
// that shouldn't touch a filesystem. It never rejects a path, since there is
// no root to escape.
type Recorder struct {
	mu sync.Mutex

	LayoutCalls int
	RawSnapshots []RawSnapshot
	Articles     map[string]any
	RunArtifacts []RunArtifact
}

type RawSnapshot struct {
	Provider model.Provider
	RunID    string
	Payload  any
}

type RunArtifact struct {
	RunID   string
	Kind    string
	Payload any
}

var _ Store = (*Recorder)(nil)

func NewRecorder() *Recorder {
	return &Recorder{Articles: map[string]any{}}
}

func (r *Recorder) EnsureLayout() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.LayoutCalls++
	return nil
}

func (r *Recorder) SaveRawProviderSnapshot(provider model.Provider, runID string, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.RawSnapshots = append(r.RawSnapshots, RawSnapshot{Provider: provider, RunID: runID, Payload: payload})
	return nil
}

func (r *Recorder) SaveNormalizedArticle(articleID string, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Articles[articleID] = payload
	return nil
}

func (r *Recorder) SaveRunArtifact(runID string, kind string, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.RunArtifacts = append(r.RunArtifacts, RunArtifact{RunID: runID, Kind: kind, Payload: payload})
	return nil
}
