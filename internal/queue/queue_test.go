package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rlou/tubescope/internal/domain"
	"github.com/rlou/tubescope/internal/progress"
)

// memStore is an in-memory Store for tests.
type memStore struct {
	mu   sync.Mutex
	jobs map[string]*domain.AnalysisJob
}

func newMemStore() *memStore {
	return &memStore{jobs: make(map[string]*domain.AnalysisJob)}
}

func (s *memStore) Create(ctx context.Context, job *domain.AnalysisJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *job
	s.jobs[job.ID] = &copied
	return nil
}

func (s *memStore) GetByID(ctx context.Context, id string) (*domain.AnalysisJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, errors.New("job not found")
	}
	copied := *job
	return &copied, nil
}

func (s *memStore) MarkProcessing(ctx context.Context, id string) error {
	return s.setStatus(id, domain.JobStatusProcessing, "", nil)
}

func (s *memStore) MarkCompleted(ctx context.Context, id string, result *domain.AnalysisResult) error {
	return s.setStatus(id, domain.JobStatusCompleted, "", result)
}

func (s *memStore) MarkFailed(ctx context.Context, id string, reason string) error {
	return s.setStatus(id, domain.JobStatusFailed, reason, nil)
}

func (s *memStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func (s *memStore) setStatus(id string, status domain.JobStatus, reason string, result *domain.AnalysisResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return errors.New("job not found")
	}
	job.Status = status
	job.Error = reason
	job.Result = domain.JSONResult{Result: result}
	return nil
}

func (s *memStore) status(id string) domain.JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok {
		return job.Status
	}
	return ""
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []progress.Event
}

func (r *recordingEmitter) EmitProgress(e progress.Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recordingEmitter) EmitError(e progress.Event)                      {}
func (r *recordingEmitter) EmitCompletion(jobID string, result interface{}) {}

func (r *recordingEmitter) byStage(stage string) []progress.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []progress.Event
	for _, e := range r.events {
		if e.Stage == stage {
			out = append(out, e)
		}
	}
	return out
}

type funcHandler func(ctx context.Context, jobID, videoID string) (*domain.AnalysisResult, error)

func (f funcHandler) Run(ctx context.Context, jobID, videoID string) (*domain.AnalysisResult, error) {
	return f(ctx, jobID, videoID)
}

func waitForStatus(t *testing.T, store *memStore, jobID string, want domain.JobStatus) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if store.status(jobID) == want {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("job %s never reached status %s (stuck at %s)", jobID, want, store.status(jobID))
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestEnqueueEmitsQueuedEvent(t *testing.T) {
	store := newMemStore()
	emitter := &recordingEmitter{}
	q := New(Config{
		Repo:    store,
		Emitter: emitter,
		Handler: funcHandler(func(ctx context.Context, jobID, videoID string) (*domain.AnalysisResult, error) {
			return &domain.AnalysisResult{VideoID: videoID}, nil
		}),
	})
	defer q.Close()

	jobID, err := q.Enqueue(context.Background(), "video-1")
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	queued := emitter.byStage(progress.StageQueued)
	if len(queued) != 1 {
		t.Fatalf("got %d queued events, want 1", len(queued))
	}
	if queued[0].JobID != jobID || queued[0].VideoID != "video-1" {
		t.Errorf("queued event = %+v, want job %s video video-1", queued[0], jobID)
	}
	if queued[0].Percentage != 0 {
		t.Errorf("queued event percentage = %d, want 0", queued[0].Percentage)
	}

	waitForStatus(t, store, jobID, domain.JobStatusCompleted)
}

func TestProcessRecordsFailure(t *testing.T) {
	store := newMemStore()
	q := New(Config{
		Repo: store,
		Handler: funcHandler(func(ctx context.Context, jobID, videoID string) (*domain.AnalysisResult, error) {
			return nil, errors.New("pipeline blew up")
		}),
	})
	defer q.Close()

	jobID, err := q.Enqueue(context.Background(), "video-2")
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	waitForStatus(t, store, jobID, domain.JobStatusFailed)

	job, err := store.GetByID(context.Background(), jobID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if job.Error != "pipeline blew up" {
		t.Errorf("job error = %q", job.Error)
	}
}
