package progress

import (
	"time"
)

// Event is one progress notification for a running job. Events are
// fire-and-forget: never persisted, never replayed to late subscribers.
type Event struct {
	JobID      string                 `json:"jobId"`
	VideoID    string                 `json:"videoId,omitempty"`
	Stage      string                 `json:"stage"`
	Message    string                 `json:"message"`
	Percentage int                    `json:"percentage"`
	Data       map[string]interface{} `json:"data,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`
}

// Pipeline stage names carried on events.
const (
	StageQueued             = "queued"
	StageFetchingComments   = "fetching_comments"
	StageFetchingTranscript = "fetching_transcript"
	StageClassifying        = "classifying_comments"
	StageAnalyzing          = "analyzing"
	StageSummarizing        = "summarizing"
	StageCompleted          = "completed"
	StageFailed             = "failed"
)

// Emitter is the narrow progress contract every pipeline stage publishes
// through. Implementations must be safe for concurrent use and must never
// block the caller.
type Emitter interface {
	EmitProgress(event Event)
	EmitError(event Event)
	EmitCompletion(jobID string, result interface{})
}

// NopEmitter discards all events. Used when no consumer is attached.
type NopEmitter struct{}

func (NopEmitter) EmitProgress(Event)                 {}
func (NopEmitter) EmitError(Event)                    {}
func (NopEmitter) EmitCompletion(string, interface{}) {}
