package repository

import (
	"context"
	"fmt"

	"github.com/rlou/tubescope/internal/domain"
	"gorm.io/gorm"
)

// FeedbackRepository handles persistence for user feedback.
type FeedbackRepository struct {
	db *gorm.DB
}

// NewFeedbackRepository creates a new feedback repository.
func NewFeedbackRepository(db *gorm.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

// Create inserts a feedback record.
func (r *FeedbackRepository) Create(ctx context.Context, fb *domain.Feedback) error {
	if err := r.db.WithContext(ctx).Create(fb).Error; err != nil {
		return fmt.Errorf("failed to create feedback: %w", err)
	}
	return nil
}

// ListByJob returns feedback entries for one job, newest first.
func (r *FeedbackRepository) ListByJob(ctx context.Context, jobID string, limit int) ([]domain.Feedback, error) {
	var out []domain.Feedback
	err := r.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}
