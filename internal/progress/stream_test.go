package progress

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestStreamWriterRecords(t *testing.T) {
	var buf bytes.Buffer
	s := NewStreamWriter(&buf, nil)

	s.Log("starting", "info")
	s.Write(map[string]string{"type": "custom", "value": "x"})
	s.Final(map[string]bool{"success": true})
	s.End()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d records, want 3", len(lines))
	}

	var logRec map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &logRec); err != nil {
		t.Fatalf("log record not JSON: %v", err)
	}
	if logRec["type"] != "log" || logRec["message"] != "starting" || logRec["level"] != "info" {
		t.Errorf("log record = %v", logRec)
	}

	var finalRec map[string]interface{}
	if err := json.Unmarshal([]byte(lines[2]), &finalRec); err != nil {
		t.Fatalf("final record not JSON: %v", err)
	}
	if finalRec["type"] != "final" {
		t.Errorf("final record = %v", finalRec)
	}
}

func TestStreamWriterEndIdempotent(t *testing.T) {
	var buf bytes.Buffer
	endCalls := 0
	s := NewStreamWriter(&buf, func() { endCalls++ })

	s.End()
	s.End()
	s.End()

	if endCalls != 1 {
		t.Errorf("onEnd ran %d times, want 1", endCalls)
	}

	select {
	case <-s.Done():
	default:
		t.Error("Done channel not closed after End")
	}
}

func TestStreamWriterDiscardsAfterEnd(t *testing.T) {
	var buf bytes.Buffer
	s := NewStreamWriter(&buf, nil)

	s.End()
	s.Log("too late", "info")
	s.Final("ignored")

	if buf.Len() != 0 {
		t.Errorf("writes after End produced output: %q", buf.String())
	}
}
