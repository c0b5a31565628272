package analysis

import (
	"context"
	"strings"
	"sync"

	"github.com/rlou/tubescope/internal/llm"
	"github.com/rlou/tubescope/internal/logger"
	"github.com/rlou/tubescope/internal/prompts"
)

// Transcript condensation bounds. A transcript under the threshold passes
// through untouched; above it, chunks are summarized concurrently and
// merged. Every LLM failure in this sub-pipeline degrades to truncation,
// never to an error.
const (
	transcriptSizeThreshold = 8000
	transcriptChunkSize     = 6000
	condensedTargetSize     = 4000
)

type textResult struct {
	Text string `json:"text" jsonschema:"required"`
}

var textSchema = llm.GenerateSchema[textResult]()

// CondenseTranscript shrinks a long transcript to a bounded summary.
// Short transcripts pass through unchanged.
func CondenseTranscript(ctx context.Context, invoker llm.Invoker, rotator *llm.KeyRotator, transcript string) string {
	if len(transcript) <= transcriptSizeThreshold {
		return transcript
	}

	chunks := chunkText(transcript, transcriptChunkSize)
	summaries := make([]string, len(chunks))

	var wg sync.WaitGroup
	for i, chunk := range chunks {
		wg.Add(1)
		go func(idx int, text string) {
			defer wg.Done()
			var out textResult
			err := invoker.Invoke(ctx, llm.InvokeRequest{
				Credential:   rotator.NextKey(),
				Instructions: prompts.TranscriptChunkPrompt,
				Input:        text,
				SchemaName:   "transcript_summary",
				Schema:       textSchema,
			}, &out)
			if err != nil || out.Text == "" {
				logger.CtxWarn(ctx, "Transcript chunk %d summary failed, truncating: %v", idx, err)
				summaries[idx] = excerpt(text, condensedTargetSize/len(chunks)+1)
				return
			}
			summaries[idx] = out.Text
		}(i, chunk)
	}
	wg.Wait()

	merged := strings.Join(summaries, " ")
	if len(merged) <= condensedTargetSize {
		return merged
	}

	// One more merge pass; fall back to truncation if it fails too.
	var out textResult
	err := invoker.Invoke(ctx, llm.InvokeRequest{
		Credential:   rotator.NextKey(),
		Instructions: prompts.TranscriptMergePrompt,
		Input:        merged,
		SchemaName:   "transcript_summary",
		Schema:       textSchema,
	}, &out)
	if err != nil || out.Text == "" {
		logger.CtxWarn(ctx, "Transcript merge pass failed, truncating: %v", err)
		return excerpt(merged, condensedTargetSize)
	}
	if len(out.Text) > condensedTargetSize {
		return excerpt(out.Text, condensedTargetSize)
	}
	return out.Text
}

// chunkText splits text into pieces of at most size bytes, preferring to
// break at whitespace.
func chunkText(text string, size int) []string {
	var chunks []string
	for len(text) > size {
		cut := size
		if idx := strings.LastIndexByte(text[:size], ' '); idx > size/2 {
			cut = idx
		}
		chunks = append(chunks, text[:cut])
		text = strings.TrimLeft(text[cut:], " ")
	}
	if text != "" {
		chunks = append(chunks, text)
	}
	return chunks
}
