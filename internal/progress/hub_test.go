package progress

import (
	"testing"
	"time"
)

func TestHubRoutesByJob(t *testing.T) {
	hub := NewHub()

	chA, cancelA := hub.Subscribe("job-a")
	defer cancelA()
	chB, cancelB := hub.Subscribe("job-b")
	defer cancelB()

	hub.EmitProgress(Event{JobID: "job-a", Stage: StageClassifying, Percentage: 50})

	select {
	case e := <-chA:
		if e.Stage != StageClassifying || e.Percentage != 50 {
			t.Errorf("got %+v", e)
		}
		if e.Timestamp.IsZero() {
			t.Error("timestamp not stamped")
		}
	case <-time.After(time.Second):
		t.Fatal("subscriber A received nothing")
	}

	select {
	case e := <-chB:
		t.Fatalf("subscriber B received foreign event %+v", e)
	default:
	}
}

func TestHubOrderingPerEmitter(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe("job-a")
	defer cancel()

	for i := 1; i <= 5; i++ {
		hub.EmitProgress(Event{JobID: "job-a", Percentage: i * 10})
	}

	for i := 1; i <= 5; i++ {
		select {
		case e := <-ch:
			if e.Percentage != i*10 {
				t.Fatalf("event %d has percentage %d, want %d", i, e.Percentage, i*10)
			}
		case <-time.After(time.Second):
			t.Fatal("missing event")
		}
	}
}

func TestHubDropsWhenSubscriberFull(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe("job-a")
	defer cancel()

	// Overfill the buffer; emission must not block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*2; i++ {
			hub.EmitProgress(Event{JobID: "job-a", Percentage: i})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("emission blocked on a full subscriber")
	}

	if got := len(ch); got != subscriberBuffer {
		t.Errorf("buffered %d events, want %d (rest dropped)", got, subscriberBuffer)
	}
}

func TestHubUnsubscribe(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe("job-a")
	cancel()

	if _, open := <-ch; open {
		t.Error("channel still open after cancel")
	}

	// Emitting after the last subscriber left is a no-op.
	hub.EmitProgress(Event{JobID: "job-a"})
	hub.EmitCompletion("job-a", nil)
}
