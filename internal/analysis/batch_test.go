package analysis

import (
	"fmt"
	"testing"

	"github.com/rlou/tubescope/internal/domain"
)

func TestPlanBatches(t *testing.T) {
	tests := []struct {
		total       int
		wantWorkers int
		wantBatch   int
	}{
		{total: 0, wantWorkers: 0, wantBatch: 0},
		{total: 1, wantWorkers: 1, wantBatch: 1},
		{total: 10, wantWorkers: 1, wantBatch: 10},
		{total: 50, wantWorkers: 5, wantBatch: 10},
		{total: 70, wantWorkers: 7, wantBatch: 10},
		{total: 80, wantWorkers: 8, wantBatch: 10},
		{total: 400, wantWorkers: 8, wantBatch: 50},
		{total: 4000, wantWorkers: 8, wantBatch: 500},
		{total: 4001, wantWorkers: 8, wantBatch: 500},
		{total: 10000, wantWorkers: 8, wantBatch: 500},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("total=%d", tt.total), func(t *testing.T) {
			plan := PlanBatches(tt.total)
			if plan.NumWorkers != tt.wantWorkers {
				t.Errorf("NumWorkers = %d, want %d", plan.NumWorkers, tt.wantWorkers)
			}
			if plan.BatchSize != tt.wantBatch {
				t.Errorf("BatchSize = %d, want %d", plan.BatchSize, tt.wantBatch)
			}
			if plan.NumWorkers > MaxWorkers {
				t.Errorf("NumWorkers = %d exceeds MaxWorkers", plan.NumWorkers)
			}
			if tt.total >= MinBatchSize && plan.BatchSize < MinBatchSize {
				t.Errorf("BatchSize = %d below MinBatchSize for total %d", plan.BatchSize, tt.total)
			}
		})
	}
}

func TestSplitBatchesCoversAllComments(t *testing.T) {
	for _, total := range []int{0, 1, 10, 33, 100, 4000, 4001, 10000} {
		t.Run(fmt.Sprintf("total=%d", total), func(t *testing.T) {
			comments := makeComments(total)
			jobs := SplitBatches(comments, "", false)

			sum := 0
			for i, job := range jobs {
				sum += len(job.Batch)
				if job.BatchNumber != i+1 {
					t.Errorf("job %d has BatchNumber %d", i, job.BatchNumber)
				}
				if job.TotalBatches != len(jobs) {
					t.Errorf("job %d has TotalBatches %d, want %d", i, job.TotalBatches, len(jobs))
				}
				if job.RetryCount != 0 {
					t.Errorf("fresh job %d has RetryCount %d", i, job.RetryCount)
				}
			}
			if sum != total {
				t.Errorf("batch sizes sum to %d, want %d", sum, total)
			}
		})
	}
}

func makeComments(n int) []domain.Comment {
	comments := make([]domain.Comment, n)
	for i := range comments {
		comments[i] = domain.Comment{
			ID:   fmt.Sprintf("c%d", i),
			Text: fmt.Sprintf("comment %d", i),
		}
	}
	return comments
}
