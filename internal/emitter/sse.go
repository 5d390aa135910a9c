package emitter

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/Tangerg/lynx/sse"
	"github.com/rs/zerolog/log"
)

// SSEWriter streams stage events to an http.ResponseWriter as Server-Sent
// Events, per §9: `event: stage-event` / `data: <json>` frames, a
// `: heartbeat` comment every HeartbeatInterval, and a terminal
// `event: fatal` frame that closes the stream.
type SSEWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
	enc     *sse.Encoder

	mu     sync.Mutex
	closed bool

	stopHeartbeat chan struct{}
}

var _ Sink = (*SSEWriter)(nil)

// NewSSEWriter prepares w for event-stream output and starts the heartbeat
// ticker. Callers must have already matched the request's context
// lifetime; Close should run when the handler returns (typically via
// defer).
func NewSSEWriter(w http.ResponseWriter, heartbeatInterval time.Duration) *SSEWriter {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, _ := w.(http.Flusher)

	s := &SSEWriter{
		w:             w,
		flusher:       flusher,
		enc:           sse.NewEncoder(),
		stopHeartbeat: make(chan struct{}),
	}
	if heartbeatInterval > 0 {
		go s.runHeartbeat(heartbeatInterval)
	}
	return s
}

func (s *SSEWriter) runHeartbeat(interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			s.writeHeartbeat()
		case <-s.stopHeartbeat:
			return
		}
	}
}

func (s *SSEWriter) writeHeartbeat() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if _, err := s.w.Write([]byte(": heartbeat\n\n")); err != nil {
		log.Warn().Err(err).Msg("sse heartbeat write failed")
		return
	}
	s.flush()
}

func (s *SSEWriter) Emit(e StageEvent) {
	data, err := json.Marshal(e)
	if err != nil {
		log.Warn().Err(err).Msg("stage event marshal failed")
		return
	}
	s.write("stage-event", data)
}

func (s *SSEWriter) Fatal(err error) {
	payload := struct {
		Error string `json:"error"`
	}{Error: err.Error()}
	data, mErr := json.Marshal(payload)
	if mErr != nil {
		data = []byte(`{"error":"internal"}`)
	}
	s.write("fatal", data)

	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	close(s.stopHeartbeat)
}

func (s *SSEWriter) write(event string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	frame, err := s.enc.Encode(&sse.Message{Event: event, Data: data})
	if err != nil {
		log.Warn().Err(err).Str("event", event).Msg("sse encode failed")
		return
	}
	if _, err := s.w.Write(frame); err != nil {
		log.Warn().Err(err).Str("event", event).Msg("sse write failed")
		return
	}
	s.flush()
}

func (s *SSEWriter) flush() {
	if s.flusher != nil {
		s.flusher.Flush()
	}
}
