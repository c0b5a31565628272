package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/rlou/tubescope/internal/domain"
	"gorm.io/gorm"
)

// JobRepository handles persistence for analysis job records.
type JobRepository struct {
	db *gorm.DB
}

// NewJobRepository creates a new job repository.
func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create inserts a new job record.
func (r *JobRepository) Create(ctx context.Context, job *domain.AnalysisJob) error {
	if err := r.db.WithContext(ctx).Create(job).Error; err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

// GetByID returns a job record by its ID.
func (r *JobRepository) GetByID(ctx context.Context, id string) (*domain.AnalysisJob, error) {
	var job domain.AnalysisJob
	if err := r.db.WithContext(ctx).First(&job, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// MarkProcessing transitions a job to the processing state.
func (r *JobRepository) MarkProcessing(ctx context.Context, id string) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&domain.AnalysisJob{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     domain.JobStatusProcessing,
			"started_at": &now,
			"updated_at": now,
		}).Error
}

// MarkCompleted stores the result and transitions the job to completed.
func (r *JobRepository) MarkCompleted(ctx context.Context, id string, result *domain.AnalysisResult) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&domain.AnalysisJob{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       domain.JobStatusCompleted,
			"result":       domain.JSONResult{Result: result},
			"completed_at": &now,
			"updated_at":   now,
		}).Error
}

// MarkFailed records the failure reason and transitions the job to failed.
func (r *JobRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&domain.AnalysisJob{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       domain.JobStatusFailed,
			"error":        reason,
			"completed_at": &now,
			"updated_at":   now,
		}).Error
}

// DeleteOlderThan removes terminal jobs older than the retention window.
func (r *JobRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("status IN ? AND updated_at < ?",
			[]domain.JobStatus{domain.JobStatusCompleted, domain.JobStatusFailed}, cutoff).
		Delete(&domain.AnalysisJob{})
	return res.RowsAffected, res.Error
}
