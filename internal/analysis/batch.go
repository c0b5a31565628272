package analysis

import "github.com/rlou/tubescope/internal/domain"

// Batching constants. The policy balances worker count against per-call
// payload size and must stay a pure function of the comment count.
const (
	MinBatchSize = 10
	MaxWorkers   = 8

	largeDatasetThreshold = 4000
	largeDatasetBatchSize = 500
)

// BatchJob is one unit of classification work. Failed jobs may be split
// in half and requeued; RetryCount tracks the split generation.
type BatchJob struct {
	Batch         []domain.Comment
	BatchNumber   int
	TotalBatches  int
	Transcript    string
	HasTranscript bool
	RetryCount    int
}

// BatchPlan is the output of the batching policy.
type BatchPlan struct {
	BatchSize  int
	NumWorkers int
}

// PlanBatches computes batch size and worker count for a comment total.
//
// Above 4000 comments the batch size is pinned at 500 with the full
// worker complement; batch count grows with input size. Below that, the
// ideal batch size is total/8 rounded up, and when that would produce
// batches under the minimum, the worker count shrinks instead so batches
// never degenerate.
func PlanBatches(totalComments int) BatchPlan {
	if totalComments <= 0 {
		return BatchPlan{BatchSize: 0, NumWorkers: 0}
	}

	if totalComments > largeDatasetThreshold {
		return BatchPlan{BatchSize: largeDatasetBatchSize, NumWorkers: MaxWorkers}
	}

	idealBatchSize := ceilDiv(totalComments, MaxWorkers)
	if idealBatchSize < MinBatchSize {
		numWorkers := totalComments / MinBatchSize
		if numWorkers < 1 {
			numWorkers = 1
		}
		return BatchPlan{
			BatchSize:  ceilDiv(totalComments, numWorkers),
			NumWorkers: numWorkers,
		}
	}

	return BatchPlan{BatchSize: idealBatchSize, NumWorkers: MaxWorkers}
}

// SplitBatches partitions comments into BatchJobs per the plan. The last
// batch may be short; every comment lands in exactly one batch.
func SplitBatches(comments []domain.Comment, transcript string, hasTranscript bool) []*BatchJob {
	plan := PlanBatches(len(comments))
	if plan.BatchSize == 0 {
		return nil
	}

	totalBatches := ceilDiv(len(comments), plan.BatchSize)
	jobs := make([]*BatchJob, 0, totalBatches)
	for i := 0; i < len(comments); i += plan.BatchSize {
		end := i + plan.BatchSize
		if end > len(comments) {
			end = len(comments)
		}
		jobs = append(jobs, &BatchJob{
			Batch:         comments[i:end],
			BatchNumber:   len(jobs) + 1,
			TotalBatches:  totalBatches,
			Transcript:    transcript,
			HasTranscript: hasTranscript,
		})
	}
	return jobs
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
