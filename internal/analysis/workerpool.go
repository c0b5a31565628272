package analysis

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rlou/tubescope/internal/domain"
	"github.com/rlou/tubescope/internal/llm"
	"github.com/rlou/tubescope/internal/logger"
	"github.com/rlou/tubescope/internal/progress"
	"github.com/rlou/tubescope/internal/prompts"
)

// ErrAllBatchesFailed is returned when not a single batch classified
// successfully. Partial failure is tolerated; total failure is not.
var ErrAllBatchesFailed = errors.New("all classification batches failed")

const (
	maxRetryGenerations = 2
	successRateFloor    = 0.95

	// transcript context included with each classification call
	classifyTranscriptLimit = 2000
)

// batchQueue is the shared work list drained by the pool. It can grow
// while being drained: failed jobs are split and pushed back. Pop claims
// a job exactly once; workers block while the queue is empty but peers
// are still active, since an active peer may requeue.
type batchQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	jobs   []*BatchJob
	active int
}

func newBatchQueue(jobs []*BatchJob) *batchQueue {
	q := &batchQueue{jobs: jobs}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// pop claims the next job, or returns false once the queue is empty and
// no worker can produce more.
func (q *batchQueue) pop() (*BatchJob, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.jobs) == 0 && q.active > 0 {
		q.cond.Wait()
	}
	if len(q.jobs) == 0 {
		q.cond.Broadcast()
		return nil, false
	}
	job := q.jobs[0]
	q.jobs = q.jobs[1:]
	q.active++
	return job, true
}

// release returns a claim, pushing any replacement sub-jobs first.
func (q *batchQueue) release(requeued ...*BatchJob) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, requeued...)
	q.active--
	q.cond.Broadcast()
}

// classifiedItem is the per-comment element of the model's structured
// classification output.
type classifiedItem struct {
	Comment   string `json:"comment" jsonschema:"required"`
	Sentiment string `json:"sentiment" jsonschema:"required,enum=positive,enum=negative,enum=neutral"`
}

type classificationResponse struct {
	Results []classifiedItem `json:"results" jsonschema:"required"`
}

var classificationSchema = llm.GenerateSchema[classificationResponse]()

// ClassifierPool classifies comments across a bounded set of workers,
// each bound to one credential for its lifetime.
type ClassifierPool struct {
	llm     llm.Invoker
	rotator *llm.KeyRotator
	emitter progress.Emitter
}

// NewClassifierPool creates a pool over the given LLM client and
// credential rotator.
func NewClassifierPool(invoker llm.Invoker, rotator *llm.KeyRotator, emitter progress.Emitter) *ClassifierPool {
	if emitter == nil {
		emitter = progress.NopEmitter{}
	}
	return &ClassifierPool{llm: invoker, rotator: rotator, emitter: emitter}
}

// ClassifyOptions carries per-run parameters for one classification pass.
type ClassifyOptions struct {
	JobID   string
	VideoID string
	// Progress percentage window this stage scales across.
	ProgressBase int
	ProgressCeil int
}

// Classify drains the batch jobs through the worker pool and returns the
// flat list of classified comments. Permanently failed batches drop their
// comments; an error is returned only when every batch failed.
func (p *ClassifierPool) Classify(ctx context.Context, jobs []*BatchJob, opts ClassifyOptions) ([]domain.ClassifiedComment, error) {
	if len(jobs) == 0 {
		return nil, nil
	}

	plan := PlanBatches(totalComments(jobs))
	numWorkers := plan.NumWorkers
	if numWorkers > len(jobs) {
		numWorkers = len(jobs)
	}

	queue := newBatchQueue(jobs)
	totalBatches := jobs[0].TotalBatches

	var (
		mu         sync.Mutex
		classified []domain.ClassifiedComment
		completed  int
		failed     int
	)

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(workerIdx int) {
			defer wg.Done()
			credential := p.rotator.KeyForWorker(workerIdx)

			for {
				job, ok := queue.pop()
				if !ok {
					return
				}

				results, err := p.classifyBatch(ctx, job, credential)
				if err == nil {
					mu.Lock()
					classified = append(classified, results...)
					completed++
					done := completed
					mu.Unlock()

					p.emitter.EmitProgress(progress.Event{
						JobID:      opts.JobID,
						VideoID:    opts.VideoID,
						Stage:      progress.StageClassifying,
						Message:    fmt.Sprintf("classified batch %d/%d", job.BatchNumber, totalBatches),
						Percentage: scaleProgress(done, totalBatches, opts.ProgressBase, opts.ProgressCeil),
					})
					queue.release()
					continue
				}

				if len(job.Batch) > MinBatchSize && job.RetryCount < maxRetryGenerations {
					left, right := splitJob(job)
					logger.CtxWarn(ctx, "Batch %d failed (retry %d), splitting into %d+%d comments: %v",
						job.BatchNumber, job.RetryCount, len(left.Batch), len(right.Batch), err)
					queue.release(left, right)
					continue
				}

				mu.Lock()
				failed++
				mu.Unlock()
				logger.CtxWarn(ctx, "Batch %d permanently failed, dropping %d comments: %v",
					job.BatchNumber, len(job.Batch), err)
				queue.release()
			}
		}(i)
	}
	wg.Wait()

	if len(classified) == 0 {
		return nil, ErrAllBatchesFailed
	}

	total := totalComments(jobs)
	if rate := float64(len(classified)) / float64(total); rate < successRateFloor {
		logger.CtxWarn(ctx, "Classification success rate %.1f%% below %.0f%% (%d/%d comments)",
			rate*100, successRateFloor*100, len(classified), total)
	}

	logger.CtxInfo(ctx, "Classification done: %d comments, %d batches completed, %d dropped",
		len(classified), completed, failed)
	return classified, nil
}

func (p *ClassifierPool) classifyBatch(ctx context.Context, job *BatchJob, credential string) ([]domain.ClassifiedComment, error) {
	texts := make([]string, len(job.Batch))
	for i, c := range job.Batch {
		texts[i] = c.Text
	}

	transcript := ""
	if job.HasTranscript {
		transcript = excerpt(job.Transcript, classifyTranscriptLimit)
	}

	var resp classificationResponse
	err := p.llm.Invoke(ctx, llm.InvokeRequest{
		Credential:   credential,
		Instructions: prompts.ClassificationSystemPrompt,
		Input:        prompts.ClassificationInput(texts, transcript),
		SchemaName:   "comment_classification",
		Schema:       classificationSchema,
	}, &resp)
	if err != nil {
		return nil, err
	}

	out := make([]domain.ClassifiedComment, 0, len(resp.Results))
	for _, item := range resp.Results {
		sentiment := domain.Sentiment(item.Sentiment)
		if !sentiment.Valid() {
			sentiment = domain.SentimentNeutral
		}
		out = append(out, domain.ClassifiedComment{
			Comment:   item.Comment,
			Sentiment: sentiment,
		})
	}
	return out, nil
}

// splitJob halves a failed batch, bumping the retry generation on both
// halves.
func splitJob(job *BatchJob) (*BatchJob, *BatchJob) {
	mid := len(job.Batch) / 2
	left := *job
	right := *job
	left.Batch = job.Batch[:mid]
	right.Batch = job.Batch[mid:]
	left.RetryCount = job.RetryCount + 1
	right.RetryCount = job.RetryCount + 1
	return &left, &right
}

func totalComments(jobs []*BatchJob) int {
	total := 0
	for _, j := range jobs {
		total += len(j.Batch)
	}
	return total
}

// scaleProgress maps done/total linearly into [base, ceil].
func scaleProgress(done, total, base, ceil int) int {
	if total <= 0 {
		return base
	}
	if done > total {
		done = total
	}
	return base + (ceil-base)*done/total
}

// excerpt truncates s to at most max bytes, cutting at a rune-safe point.
func excerpt(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := s[:max]
	for len(cut) > 0 && cut[len(cut)-1]&0xC0 == 0x80 {
		cut = cut[:len(cut)-1]
	}
	return cut
}
