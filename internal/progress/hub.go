package progress

import (
	"sync"
	"time"

	"github.com/rlou/tubescope/internal/logger"
)

// Hub routes progress events to per-job subscribers. Delivery is
// at-most-once: a subscriber whose channel is full misses the event
// rather than stalling the pipeline.
type Hub struct {
	mu   sync.RWMutex
	subs map[string][]chan Event
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string][]chan Event)}
}

const subscriberBuffer = 64

// Subscribe registers a listener for one job's events. The returned
// cancel function must be called when the listener goes away.
func (h *Hub) Subscribe(jobID string) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	h.mu.Lock()
	h.subs[jobID] = append(h.subs[jobID], ch)
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		channels := h.subs[jobID]
		for i, c := range channels {
			if c == ch {
				h.subs[jobID] = append(channels[:i], channels[i+1:]...)
				close(c)
				break
			}
		}
		if len(h.subs[jobID]) == 0 {
			delete(h.subs, jobID)
		}
	}
	return ch, cancel
}

func (h *Hub) publish(event Event) {
	h.mu.RLock()
	channels := h.subs[event.JobID]
	h.mu.RUnlock()

	for _, ch := range channels {
		select {
		case ch <- event:
		default:
			// slow subscriber, drop
		}
	}
}

// EmitProgress publishes a progress event to the job's subscribers.
func (h *Hub) EmitProgress(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	logger.Debug("Progress job=%s stage=%s pct=%d: %s",
		event.JobID, event.Stage, event.Percentage, event.Message)
	h.publish(event)
}

// EmitError publishes a failure event to the job's subscribers.
func (h *Hub) EmitError(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	event.Stage = StageFailed
	h.publish(event)
}

// EmitCompletion publishes the terminal event carrying the full result.
func (h *Hub) EmitCompletion(jobID string, result interface{}) {
	h.publish(Event{
		JobID:      jobID,
		Stage:      StageCompleted,
		Message:    "analysis complete",
		Percentage: 100,
		Data:       map[string]interface{}{"result": result},
		Timestamp:  time.Now(),
	})
}
