package analysis

import (
	"context"
	"strings"

	"github.com/rlou/tubescope/internal/domain"
	"github.com/rlou/tubescope/internal/llm"
	"github.com/rlou/tubescope/internal/logger"
	"github.com/rlou/tubescope/internal/prompts"
)

// Per-stage sample bounds keep prompt sizes predictable. Each stage reads
// a prefix of its subset; comments arrive relevance-ordered so the prefix
// is the most relevant slice.
const (
	emotionsSampleLimit     = 300
	patternsSampleLimit     = 150 // per sentiment bucket
	lovedSampleLimit        = 200
	improvementsSampleLimit = 200
	wantMoreSampleLimit     = 400

	insightTranscriptLimit = 1500
)

var (
	emotionsSchema     = llm.GenerateSchema[domain.EmotionInsight]()
	patternsSchema     = llm.GenerateSchema[domain.PatternInsight]()
	lovedSchema        = llm.GenerateSchema[domain.LovedInsight]()
	improvementsSchema = llm.GenerateSchema[domain.ImprovementInsight]()
	wantMoreSchema     = llm.GenerateSchema[domain.WantMoreInsight]()
)

// Insights runs the five downstream analysis stages. Every stage returns
// a usable zero value on failure so one stage can never abort the
// pipeline; failures are logged and swallowed here.
type Insights struct {
	llm     llm.Invoker
	rotator *llm.KeyRotator
}

// NewInsights creates the insight stage runner.
func NewInsights(invoker llm.Invoker, rotator *llm.KeyRotator) *Insights {
	return &Insights{llm: invoker, rotator: rotator}
}

func (a *Insights) invoke(ctx context.Context, stage, instructions, input, schemaName string, schema map[string]interface{}, out interface{}) bool {
	err := a.llm.Invoke(ctx, llm.InvokeRequest{
		Credential:   a.rotator.NextKey(),
		Instructions: instructions,
		Input:        input,
		SchemaName:   schemaName,
		Schema:       schema,
	}, out)
	if err != nil {
		logger.CtxWarn(ctx, "Insight stage %s failed, returning empty result: %v", stage, err)
		return false
	}
	return true
}

// Emotions extracts the top emotions across all classified comments.
func (a *Insights) Emotions(ctx context.Context, all []domain.ClassifiedComment, transcript string) *domain.EmotionInsight {
	result := &domain.EmotionInsight{}
	if len(all) == 0 {
		return result
	}
	input := prompts.InsightInput("Comments", sampleTexts(all, emotionsSampleLimit), excerpt(transcript, insightTranscriptLimit))
	a.invoke(ctx, "emotions", prompts.EmotionsSystemPrompt, input, "emotion_insight", emotionsSchema, result)
	return result
}

// Patterns extracts recurring themes per sentiment bucket.
func (a *Insights) Patterns(ctx context.Context, sep SeparatedComments) *domain.PatternInsight {
	result := &domain.PatternInsight{}
	if len(sep.Positive)+len(sep.Negative)+len(sep.Neutral) == 0 {
		return result
	}

	var sb strings.Builder
	sb.WriteString(prompts.InsightInput("Positive comments", sampleTexts(sep.Positive, patternsSampleLimit), ""))
	sb.WriteByte('\n')
	sb.WriteString(prompts.InsightInput("Negative comments", sampleTexts(sep.Negative, patternsSampleLimit), ""))
	sb.WriteByte('\n')
	sb.WriteString(prompts.InsightInput("Neutral comments", sampleTexts(sep.Neutral, patternsSampleLimit), ""))

	a.invoke(ctx, "patterns", prompts.PatternsSystemPrompt, sb.String(), "pattern_insight", patternsSchema, result)
	return result
}

// ThingsLoved extracts what viewers appreciated, from positive comments
// only. Without positive comments there is nothing to analyze.
func (a *Insights) ThingsLoved(ctx context.Context, positive []domain.ClassifiedComment, transcript string) *domain.LovedInsight {
	result := &domain.LovedInsight{}
	if len(positive) == 0 {
		return result
	}
	input := prompts.InsightInput("Positive comments", sampleTexts(positive, lovedSampleLimit), excerpt(transcript, insightTranscriptLimit))
	a.invoke(ctx, "things_loved", prompts.ThingsLovedSystemPrompt, input, "loved_insight", lovedSchema, result)
	return result
}

// contrastive markers that qualify a neutral comment as criticism-bearing
var contrastiveMarkers = []string{"but", "however", "could", "should"}

// Improvements extracts actionable issues from negative comments plus
// neutral comments carrying contrastive language.
func (a *Insights) Improvements(ctx context.Context, sep SeparatedComments, transcript string) *domain.ImprovementInsight {
	result := &domain.ImprovementInsight{}

	pool := make([]domain.ClassifiedComment, 0, len(sep.Negative))
	pool = append(pool, sep.Negative...)
	for _, c := range sep.Neutral {
		if hasContrastiveMarker(c.Comment) {
			pool = append(pool, c)
		}
	}
	if len(pool) == 0 {
		return result
	}

	input := prompts.InsightInput("Critical comments", sampleTexts(pool, improvementsSampleLimit), excerpt(transcript, insightTranscriptLimit))
	a.invoke(ctx, "improvements", prompts.ImprovementsSystemPrompt, input, "improvement_insight", improvementsSchema, result)
	return result
}

// WantMore extracts demand signals from positive and neutral comments.
func (a *Insights) WantMore(ctx context.Context, sep SeparatedComments, transcript string) *domain.WantMoreInsight {
	result := &domain.WantMoreInsight{}

	pool := make([]domain.ClassifiedComment, 0, len(sep.Positive)+len(sep.Neutral))
	pool = append(pool, sep.Positive...)
	pool = append(pool, sep.Neutral...)
	if len(pool) == 0 {
		return result
	}

	input := prompts.InsightInput("Comments", sampleTexts(pool, wantMoreSampleLimit), excerpt(transcript, insightTranscriptLimit))
	a.invoke(ctx, "want_more", prompts.WantMoreSystemPrompt, input, "want_more_insight", wantMoreSchema, result)
	return result
}

// hasContrastiveMarker matches whole words only, so "about" and "butter"
// do not qualify via "but".
func hasContrastiveMarker(text string) bool {
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,!?;:\"'()[]")
		for _, marker := range contrastiveMarkers {
			if word == marker {
				return true
			}
		}
	}
	return false
}

func sampleTexts(comments []domain.ClassifiedComment, limit int) []string {
	if len(comments) > limit {
		comments = comments[:limit]
	}
	out := make([]string, len(comments))
	for i, c := range comments {
		out[i] = c.Comment
	}
	return out
}
