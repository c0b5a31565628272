package progress

import (
	"encoding/json"
	"io"
	"sync"
	"time"
)

// Streamer is the request-scoped log channel of a streaming pipeline.
// Records are newline-delimited JSON; End must be reachable from every
// exit path and is safe to call more than once.
type Streamer interface {
	Write(record interface{})
	Log(message, level string)
	Final(result interface{})
	End()
}

type flusher interface {
	Flush()
}

// StreamWriter emits NDJSON records over a chunked HTTP response (or any
// writer). Safe for concurrent use; writes after End are discarded.
type StreamWriter struct {
	mu     sync.Mutex
	w      io.Writer
	ended  bool
	endFn  sync.Once
	onEnd  func()
	closed chan struct{}
}

// NewStreamWriter wraps a writer. onEnd, if non-nil, runs exactly once
// when the stream ends.
func NewStreamWriter(w io.Writer, onEnd func()) *StreamWriter {
	return &StreamWriter{
		w:      w,
		onEnd:  onEnd,
		closed: make(chan struct{}),
	}
}

// Write serializes one record followed by a newline and flushes it out.
func (s *StreamWriter) Write(record interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return
	}
	data, err := json.Marshal(record)
	if err != nil {
		return
	}
	s.w.Write(data)
	s.w.Write([]byte("\n"))
	if f, ok := s.w.(flusher); ok {
		f.Flush()
	}
}

type logRecord struct {
	Type      string    `json:"type"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type finalRecord struct {
	Type   string      `json:"type"`
	Result interface{} `json:"result"`
}

// Log emits one log line record.
func (s *StreamWriter) Log(message, level string) {
	s.Write(logRecord{
		Type:      "log",
		Level:     level,
		Message:   message,
		Timestamp: time.Now(),
	})
}

// Final emits the terminal result record. The stream stays open until End.
func (s *StreamWriter) Final(result interface{}) {
	s.Write(finalRecord{Type: "final", Result: result})
}

// End closes the stream. Idempotent.
func (s *StreamWriter) End() {
	s.endFn.Do(func() {
		s.mu.Lock()
		s.ended = true
		s.mu.Unlock()
		close(s.closed)
		if s.onEnd != nil {
			s.onEnd()
		}
	})
}

// Done is closed once the stream has ended.
func (s *StreamWriter) Done() <-chan struct{} {
	return s.closed
}
