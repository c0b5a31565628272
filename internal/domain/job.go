package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// JobStatus represents the lifecycle state of an analysis job.
// Values include JobStatusPending, JobStatusProcessing, JobStatusCompleted,
// and JobStatusFailed.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// JSONResult stores an AnalysisResult as a JSON column.
type JSONResult struct {
	Result *AnalysisResult
}

// Value implements the driver.Valuer interface for database serialization.
func (r JSONResult) Value() (driver.Value, error) {
	if r.Result == nil {
		return nil, nil
	}
	b, err := json.Marshal(r.Result)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface for database deserialization.
func (r *JSONResult) Scan(value interface{}) error {
	if value == nil {
		r.Result = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return errors.New("failed to scan JSONResult")
		}
		bytes = []byte(str)
	}
	if len(bytes) == 0 {
		r.Result = nil
		return nil
	}
	r.Result = &AnalysisResult{}
	return json.Unmarshal(bytes, r.Result)
}

// AnalysisJob is the persisted record of one video analysis job. The job
// queue owns this record; the pipeline only returns a value.
type AnalysisJob struct {
	ID          string     `gorm:"type:text;primaryKey" json:"id"`
	VideoID     string     `gorm:"type:text;not null;index:idx_jobs_video" json:"video_id"`
	Status      JobStatus  `gorm:"type:text;index:idx_jobs_status;default:pending" json:"status"`
	Result      JSONResult `gorm:"type:text" json:"result,omitempty"`
	Error       string     `gorm:"type:text" json:"error,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName returns the database table name for AnalysisJob.
func (AnalysisJob) TableName() string {
	return "analysis_jobs"
}
