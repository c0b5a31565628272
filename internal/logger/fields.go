package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// ============================================
// Standard Tracing Fields (Context level)
// These fields are propagated through the call chain
// ============================================

const (
	// FieldRequestID is the HTTP request ID (UUID)
	FieldRequestID = "request_id"

	// FieldJobID is the analysis job ID
	FieldJobID = "job_id"

	// FieldVideoID is the YouTube video ID under analysis
	FieldVideoID = "video_id"

	// FieldStage is the current pipeline stage
	FieldStage = "stage"

	// FieldAgent is the validation agent name
	FieldAgent = "agent"

	// FieldComponent is the component/module name
	FieldComponent = "component"
)

// ============================================
// Standard Metric Fields (Entry level)
// These fields are used for aggregation and alerting
// ============================================

const (
	// FieldDurationMs is the execution duration in milliseconds
	FieldDurationMs = "duration_ms"

	// FieldCount is a generic count field
	FieldCount = "count"

	// FieldStatus is the operation status
	FieldStatus = "status"

	// FieldWorker is the classification worker index
	FieldWorker = "worker"

	// FieldBatch is the batch number within a classification run
	FieldBatch = "batch"
)
