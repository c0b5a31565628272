package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/rlou/tubescope/internal/domain"
	"github.com/rlou/tubescope/internal/llm"
	"github.com/rlou/tubescope/internal/progress"
)

// fakeInvoker classifies by keyword: comments containing "good" are
// positive, "bad" negative, everything else neutral. The comment texts
// are recovered from the numbered prompt lines.
type fakeInvoker struct {
	mu     sync.Mutex
	calls  int
	failFn func(req llm.InvokeRequest) error
}

func (f *fakeInvoker) Invoke(ctx context.Context, req llm.InvokeRequest, out interface{}) error {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.failFn != nil {
		if err := f.failFn(req); err != nil {
			return err
		}
	}

	if resp, ok := out.(*classificationResponse); ok {
		for _, text := range parseNumberedLines(req.Input) {
			resp.Results = append(resp.Results, classifiedItem{
				Comment:   text,
				Sentiment: string(sentimentFor(text)),
			})
		}
	}
	return nil
}

func (f *fakeInvoker) Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResult, error) {
	return &llm.ChatResult{Content: "done"}, nil
}

func (f *fakeInvoker) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func parseNumberedLines(input string) []string {
	var out []string
	for _, line := range strings.Split(input, "\n") {
		idx := strings.Index(line, ". ")
		if idx <= 0 {
			continue
		}
		if _, err := fmt.Sscanf(line[:idx], "%d", new(int)); err != nil {
			continue
		}
		out = append(out, line[idx+2:])
	}
	return out
}

func sentimentFor(text string) domain.Sentiment {
	switch {
	case strings.Contains(text, "good"):
		return domain.SentimentPositive
	case strings.Contains(text, "bad"):
		return domain.SentimentNegative
	default:
		return domain.SentimentNeutral
	}
}

// recordingEmitter captures progress events for assertions.
type recordingEmitter struct {
	mu     sync.Mutex
	events []progress.Event
}

func (r *recordingEmitter) EmitProgress(e progress.Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recordingEmitter) EmitError(e progress.Event) {
	e.Stage = progress.StageFailed
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recordingEmitter) EmitCompletion(jobID string, result interface{}) {
	r.mu.Lock()
	r.events = append(r.events, progress.Event{JobID: jobID, Stage: progress.StageCompleted, Percentage: 100})
	r.mu.Unlock()
}

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

func mustRotator(t *testing.T, keys ...string) *llm.KeyRotator {
	t.Helper()
	rotator, err := llm.NewKeyRotator(keys)
	if err != nil {
		t.Fatalf("NewKeyRotator: %v", err)
	}
	return rotator
}

func TestClassifyAllBatchesSucceed(t *testing.T) {
	const total = 100
	comments := make([]domain.Comment, total)
	for i := range comments {
		comments[i] = domain.Comment{ID: fmt.Sprintf("c%d", i), Text: fmt.Sprintf("unique comment %d", i)}
	}

	invoker := &fakeInvoker{}
	emitter := &recordingEmitter{}
	pool := NewClassifierPool(invoker, mustRotator(t, "k1", "k2"), emitter)

	jobs := SplitBatches(comments, "", false)
	classified, err := pool.Classify(context.Background(), jobs, ClassifyOptions{
		JobID:        "job1",
		ProgressBase: 40,
		ProgressCeil: 60,
	})
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}

	if len(classified) != total {
		t.Fatalf("classified %d comments, want %d", len(classified), total)
	}

	// Exactly-once: no comment classified twice.
	seen := make(map[string]bool, total)
	for _, c := range classified {
		if seen[c.Comment] {
			t.Errorf("comment %q classified twice", c.Comment)
		}
		seen[c.Comment] = true
	}

	// One progress event per batch, scaled into the configured window.
	events := emitter.byStage(progress.StageClassifying)
	if len(events) != len(jobs) {
		t.Errorf("got %d progress events, want %d", len(events), len(jobs))
	}
	for _, e := range events {
		if e.Percentage < 40 || e.Percentage > 60 {
			t.Errorf("progress %d outside [40,60]", e.Percentage)
		}
	}
}

func TestClassifyRetrySplitBound(t *testing.T) {
	// A 40-comment batch that fails every attempt splits 40 -> 20+20 ->
	// 10x4, then every size-10 job fails permanently at retryCount 2.
	// That is exactly 1 + 2 + 4 = 7 classification attempts.
	comments := makeComments(40)
	job := &BatchJob{Batch: comments, BatchNumber: 1, TotalBatches: 1}

	invoker := &fakeInvoker{
		failFn: func(llm.InvokeRequest) error { return errors.New("provider down") },
	}
	pool := NewClassifierPool(invoker, mustRotator(t, "k1"), progress.NopEmitter{})

	classified, err := pool.Classify(context.Background(), []*BatchJob{job}, ClassifyOptions{})
	if !errors.Is(err, ErrAllBatchesFailed) {
		t.Fatalf("err = %v, want ErrAllBatchesFailed", err)
	}
	if classified != nil {
		t.Fatalf("expected no classified comments, got %d", len(classified))
	}
	if got := invoker.callCount(); got != 7 {
		t.Errorf("made %d classification attempts, want 7", got)
	}
}

func TestClassifyPartialFailureDropsSilently(t *testing.T) {
	// Two batches; the one containing the poisoned comment fails and is
	// too small to split. Its comments drop, the rest survive, no error.
	batchA := &BatchJob{Batch: makeComments(10), BatchNumber: 1, TotalBatches: 2}
	poisoned := []domain.Comment{{ID: "x", Text: "poison pill"}}
	for i := 0; i < 9; i++ {
		poisoned = append(poisoned, domain.Comment{ID: fmt.Sprintf("p%d", i), Text: fmt.Sprintf("extra %d", i)})
	}
	batchB := &BatchJob{Batch: poisoned, BatchNumber: 2, TotalBatches: 2}

	invoker := &fakeInvoker{
		failFn: func(req llm.InvokeRequest) error {
			if strings.Contains(req.Input, "poison pill") {
				return errors.New("simulated failure")
			}
			return nil
		},
	}
	pool := NewClassifierPool(invoker, mustRotator(t, "k1"), progress.NopEmitter{})

	classified, err := pool.Classify(context.Background(), []*BatchJob{batchA, batchB}, ClassifyOptions{})
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if len(classified) != 10 {
		t.Fatalf("classified %d comments, want 10 (failed batch dropped)", len(classified))
	}
}

func TestClassifyEmptyQueue(t *testing.T) {
	pool := NewClassifierPool(&fakeInvoker{}, mustRotator(t, "k1"), progress.NopEmitter{})
	classified, err := pool.Classify(context.Background(), nil, ClassifyOptions{})
	if err != nil || classified != nil {
		t.Fatalf("empty queue: got %v, %v", classified, err)
	}
}
