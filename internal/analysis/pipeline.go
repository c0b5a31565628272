package analysis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/rlou/tubescope/internal/domain"
	"github.com/rlou/tubescope/internal/llm"
	"github.com/rlou/tubescope/internal/logger"
	"github.com/rlou/tubescope/internal/progress"
)

// ErrNoComments aborts a job whose video has no comments to analyze.
var ErrNoComments = errors.New("no comments found for this video")

// CommentFetcher supplies the raw comments for a video.
type CommentFetcher interface {
	FetchAllComments(ctx context.Context, videoID string) ([]domain.Comment, error)
}

// TranscriptSource supplies the transcript for a video, when one exists.
type TranscriptSource interface {
	FetchTranscript(ctx context.Context, videoID string) (*domain.Transcript, error)
}

// Pipeline runs one full video comment analysis: fetch, classify across
// the worker pool, fan out the five insight stages, aggregate.
type Pipeline struct {
	comments    CommentFetcher
	transcripts TranscriptSource
	llm         llm.Invoker
	rotator     *llm.KeyRotator
	pool        *ClassifierPool
	insights    *Insights
	emitter     progress.Emitter
	maxComments int
}

// PipelineConfig wires a Pipeline.
type PipelineConfig struct {
	Comments    CommentFetcher
	Transcripts TranscriptSource
	LLM         llm.Invoker
	Rotator     *llm.KeyRotator
	Emitter     progress.Emitter
	MaxComments int
}

// NewPipeline creates a video analysis pipeline.
func NewPipeline(cfg PipelineConfig) *Pipeline {
	emitter := cfg.Emitter
	if emitter == nil {
		emitter = progress.NopEmitter{}
	}
	maxComments := cfg.MaxComments
	if maxComments <= 0 {
		maxComments = 10000
	}
	return &Pipeline{
		comments:    cfg.Comments,
		transcripts: cfg.Transcripts,
		llm:         cfg.LLM,
		rotator:     cfg.Rotator,
		pool:        NewClassifierPool(cfg.LLM, cfg.Rotator, emitter),
		insights:    NewInsights(cfg.LLM, cfg.Rotator),
		emitter:     emitter,
		maxComments: maxComments,
	}
}

// Run executes the pipeline for one job. On failure the error event has
// already been emitted; the caller records the job as failed.
func (p *Pipeline) Run(ctx context.Context, jobID, videoID string) (*domain.AnalysisResult, error) {
	ctx = logger.SetJobID(ctx, jobID)
	ctx = logger.SetVideoID(ctx, videoID)

	result, err := p.run(ctx, jobID, videoID)
	if err != nil {
		p.emitter.EmitError(progress.Event{
			JobID:   jobID,
			VideoID: videoID,
			Message: err.Error(),
		})
		return nil, err
	}
	p.emitter.EmitCompletion(jobID, result)
	return result, nil
}

func (p *Pipeline) run(ctx context.Context, jobID, videoID string) (*domain.AnalysisResult, error) {
	emit := func(stage, message string, pct int) {
		p.emitter.EmitProgress(progress.Event{
			JobID:      jobID,
			VideoID:    videoID,
			Stage:      stage,
			Message:    message,
			Percentage: pct,
		})
	}

	emit(progress.StageFetchingComments, "fetching comments", 10)

	// Comments and transcript fetch concurrently. Transcript failure is
	// survivable; comment failure is not.
	var (
		wg          sync.WaitGroup
		comments    []domain.Comment
		commentsErr error
		transcript  domain.Transcript
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		comments, commentsErr = p.comments.FetchAllComments(ctx, videoID)
	}()
	go func() {
		defer wg.Done()
		t, err := p.transcripts.FetchTranscript(ctx, videoID)
		if err != nil {
			logger.CtxWarn(ctx, "Transcript fetch failed, continuing without: %v", err)
			return
		}
		transcript = *t
	}()
	wg.Wait()

	if commentsErr != nil {
		return nil, fmt.Errorf("fetch comments: %w", commentsErr)
	}
	if len(comments) == 0 {
		return nil, ErrNoComments
	}

	emit(progress.StageFetchingTranscript, "inputs fetched", 20)

	// Most relevant comments first; cap the total analyzed.
	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].RelevanceScore > comments[j].RelevanceScore
	})
	if len(comments) > p.maxComments {
		comments = comments[:p.maxComments]
	}

	transcriptText := ""
	if transcript.Available {
		transcriptText = CondenseTranscript(ctx, p.llm, p.rotator, transcript.Text)
	}

	emit(progress.StageClassifying, fmt.Sprintf("classifying %d comments", len(comments)), 30)

	jobs := SplitBatches(comments, transcriptText, transcript.Available)
	classified, err := p.pool.Classify(ctx, jobs, ClassifyOptions{
		JobID:        jobID,
		VideoID:      videoID,
		ProgressBase: 40,
		ProgressCeil: 60,
	})
	if err != nil {
		return nil, fmt.Errorf("classify comments: %w", err)
	}

	sep := Separate(classified)
	emit(progress.StageAnalyzing, "running insight analyses", 60)

	result := &domain.AnalysisResult{
		VideoID:        videoID,
		HasTranscript:  transcript.Available,
		TotalProcessed: len(classified),
	}

	// Five independent stages, each writing its own result field. Every
	// stage handles its own failures, so the join waits unconditionally.
	var stagesDone atomic.Int32
	stageFinished := func(name string) {
		done := int(stagesDone.Add(1))
		emit(progress.StageAnalyzing, name+" analysis complete", scaleProgress(done, 5, 60, 80))
	}

	var stageWG sync.WaitGroup
	stageWG.Add(5)
	go func() {
		defer stageWG.Done()
		result.Emotions = p.insights.Emotions(ctx, classified, transcriptText)
		stageFinished("emotions")
	}()
	go func() {
		defer stageWG.Done()
		result.Patterns = p.insights.Patterns(ctx, sep)
		stageFinished("patterns")
	}()
	go func() {
		defer stageWG.Done()
		result.ThingsLoved = p.insights.ThingsLoved(ctx, sep.Positive, transcriptText)
		stageFinished("things loved")
	}()
	go func() {
		defer stageWG.Done()
		result.Improvements = p.insights.Improvements(ctx, sep, transcriptText)
		stageFinished("improvements")
	}()
	go func() {
		defer stageWG.Done()
		result.WantMore = p.insights.WantMore(ctx, sep, transcriptText)
		stageFinished("want more")
	}()
	stageWG.Wait()

	emit(progress.StageSummarizing, "aggregating summary", 95)
	result.Summary = Summarize(sep)

	logger.CtxInfo(ctx, "Analysis complete: %d comments processed (%d positive / %d negative / %d neutral)",
		len(classified), len(sep.Positive), len(sep.Negative), len(sep.Neutral))
	return result, nil
}
