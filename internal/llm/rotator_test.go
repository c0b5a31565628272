package llm

import (
	"errors"
	"testing"
)

func TestNewKeyRotatorEmptyPool(t *testing.T) {
	if _, err := NewKeyRotator(nil); !errors.Is(err, ErrEmptyKeyPool) {
		t.Fatalf("err = %v, want ErrEmptyKeyPool", err)
	}
}

func TestNextKeyCyclesFullPool(t *testing.T) {
	keys := []string{"a", "b", "c"}
	rotator, err := NewKeyRotator(keys)
	if err != nil {
		t.Fatalf("NewKeyRotator: %v", err)
	}

	seen := make(map[string]bool)
	for i := 0; i < len(keys); i++ {
		seen[rotator.NextKey()] = true
	}
	if len(seen) != len(keys) {
		t.Errorf("first %d calls yielded %d distinct keys", len(keys), len(seen))
	}

	// Next cycle repeats in the same order.
	if got := rotator.NextKey(); got != "a" {
		t.Errorf("cycle restart = %q, want %q", got, "a")
	}
}

func TestKeyForWorkerDeterministic(t *testing.T) {
	rotator, err := NewKeyRotator([]string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("NewKeyRotator: %v", err)
	}

	tests := []struct {
		worker int
		want   string
	}{
		{worker: 0, want: "a"},
		{worker: 1, want: "b"},
		{worker: 2, want: "c"},
		{worker: 3, want: "a"},
		{worker: 7, want: "b"},
	}
	for _, tt := range tests {
		for rep := 0; rep < 3; rep++ {
			if got := rotator.KeyForWorker(tt.worker); got != tt.want {
				t.Errorf("KeyForWorker(%d) = %q, want %q", tt.worker, got, tt.want)
			}
		}
	}

	// Interleaved NextKey calls must not disturb worker assignments.
	rotator.NextKey()
	if got := rotator.KeyForWorker(1); got != "b" {
		t.Errorf("KeyForWorker(1) after NextKey = %q, want %q", got, "b")
	}
}
