package emitter

import "sync"

// Recorder is an in-memory Sink for orchestrator and stage tests: it never
// drops or blocks, and keeps every event in arrival order.
type Recorder struct {
	mu     sync.Mutex
	events []StageEvent
	fatal  error
}

var _ Sink = (*Recorder)(nil)

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Emit(e StageEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *Recorder) Fatal(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fatal = err
}

// Events returns a snapshot of every event recorded so far, in order.
func (r *Recorder) Events() []StageEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]StageEvent, len(r.events))
	copy(out, r.events)
	return out
}

// FatalError returns the error passed to Fatal, or nil if Fatal was never
// called.
func (r *Recorder) FatalError() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fatal
}
