package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rlou/tubescope/internal/domain"
	"github.com/rlou/tubescope/internal/logger"
	"github.com/rlou/tubescope/internal/progress"
)

// Handler runs one analysis job and returns its result. The queue owns
// the job record; the handler only computes a value.
type Handler interface {
	Run(ctx context.Context, jobID, videoID string) (*domain.AnalysisResult, error)
}

// Store is the persistence contract for job records.
type Store interface {
	Create(ctx context.Context, job *domain.AnalysisJob) error
	GetByID(ctx context.Context, id string) (*domain.AnalysisJob, error)
	MarkProcessing(ctx context.Context, id string) error
	MarkCompleted(ctx context.Context, id string, result *domain.AnalysisResult) error
	MarkFailed(ctx context.Context, id string, reason string) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Queue is an in-process job queue with persisted job records. Jobs move
// pending -> processing -> completed|failed; terminal records are pruned
// after the retention window.
type Queue struct {
	repo      Store
	handler   Handler
	emitter   progress.Emitter
	jobs      chan job
	retention time.Duration

	wg       sync.WaitGroup
	shutdown context.CancelFunc
}

type job struct {
	id      string
	videoID string
}

// Config wires a Queue.
type Config struct {
	Repo      Store
	Handler   Handler
	Emitter   progress.Emitter
	Workers   int
	Retention time.Duration
}

// New creates a queue and starts its workers.
func New(cfg Config) *Queue {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 2
	}
	retention := cfg.Retention
	if retention <= 0 {
		retention = 24 * time.Hour
	}
	emitter := cfg.Emitter
	if emitter == nil {
		emitter = progress.NopEmitter{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	q := &Queue{
		repo:      cfg.Repo,
		handler:   cfg.Handler,
		emitter:   emitter,
		jobs:      make(chan job, 256),
		retention: retention,
		shutdown:  cancel,
	}

	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx)
	}
	q.wg.Add(1)
	go q.janitor(ctx)

	return q
}

// Enqueue creates a pending job record and dispatches it. Returns the
// new job ID.
func (q *Queue) Enqueue(ctx context.Context, videoID string) (string, error) {
	jobID := uuid.NewString()
	record := &domain.AnalysisJob{
		ID:      jobID,
		VideoID: videoID,
		Status:  domain.JobStatusPending,
	}
	if err := q.repo.Create(ctx, record); err != nil {
		return "", fmt.Errorf("enqueue job: %w", err)
	}

	q.emitter.EmitProgress(progress.Event{
		JobID:      jobID,
		VideoID:    videoID,
		Stage:      progress.StageQueued,
		Message:    "job queued",
		Percentage: 0,
	})

	select {
	case q.jobs <- job{id: jobID, videoID: videoID}:
	default:
		// queue full, fail the record rather than block the caller
		_ = q.repo.MarkFailed(ctx, jobID, "job queue is full")
		return "", fmt.Errorf("enqueue job: queue is full")
	}

	logger.CtxInfo(ctx, "Enqueued job %s for video %s", jobID, videoID)
	return jobID, nil
}

// GetJob returns a job record by ID.
func (q *Queue) GetJob(ctx context.Context, jobID string) (*domain.AnalysisJob, error) {
	return q.repo.GetByID(ctx, jobID)
}

func (q *Queue) worker(ctx context.Context) {
	defer q.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-q.jobs:
			q.process(ctx, j)
		}
	}
}

func (q *Queue) process(ctx context.Context, j job) {
	ctx = logger.SetJobID(ctx, j.id)

	if err := q.repo.MarkProcessing(ctx, j.id); err != nil {
		logger.CtxError(ctx, "Failed to mark job processing: %v", err)
		return
	}

	result, err := q.handler.Run(ctx, j.id, j.videoID)
	if err != nil {
		logger.CtxWarn(ctx, "Job failed: %v", err)
		if dbErr := q.repo.MarkFailed(ctx, j.id, err.Error()); dbErr != nil {
			logger.CtxError(ctx, "Failed to record job failure: %v", dbErr)
		}
		return
	}

	if err := q.repo.MarkCompleted(ctx, j.id, result); err != nil {
		logger.CtxError(ctx, "Failed to record job completion: %v", err)
	}
}

// janitor prunes terminal jobs past the retention window.
func (q *Queue) janitor(ctx context.Context) {
	defer q.wg.Done()
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := q.repo.DeleteOlderThan(ctx, time.Now().Add(-q.retention))
			if err != nil {
				logger.CtxError(ctx, "Job retention sweep failed: %v", err)
				continue
			}
			if removed > 0 {
				logger.CtxInfo(ctx, "Pruned %d expired job records", removed)
			}
		}
	}
}

// Close stops the workers. In-flight jobs observe context cancellation.
func (q *Queue) Close() {
	q.shutdown()
	q.wg.Wait()
}
