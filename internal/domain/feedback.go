package domain

import "time"

// Feedback is a user-submitted rating of a completed analysis.
type Feedback struct {
	ID        string    `gorm:"type:text;primaryKey" json:"id"`
	JobID     string    `gorm:"type:text;not null;index:idx_feedback_job" json:"job_id"`
	Rating    int       `gorm:"not null" json:"rating"` // 1-5
	Comment   string    `gorm:"type:text" json:"comment,omitempty"`
	Email     string    `gorm:"type:text" json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for Feedback.
func (Feedback) TableName() string {
	return "feedback"
}
