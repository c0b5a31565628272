package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/rlou/tubescope/internal/analysis"
	"github.com/rlou/tubescope/internal/config"
	"github.com/rlou/tubescope/internal/llm"
	"github.com/rlou/tubescope/internal/logger"
	"github.com/rlou/tubescope/internal/progress"
	"github.com/rlou/tubescope/internal/youtube"
)

// stdoutEmitter prints progress to stderr so the result JSON on stdout
// stays machine-readable.
type stdoutEmitter struct{}

func (stdoutEmitter) EmitProgress(e progress.Event) {
	fmt.Fprintf(os.Stderr, "[%3d%%] %-22s %s\n", e.Percentage, e.Stage, e.Message)
}

func (stdoutEmitter) EmitError(e progress.Event) {
	fmt.Fprintf(os.Stderr, "[FAIL] %s\n", e.Message)
}

func (stdoutEmitter) EmitCompletion(jobID string, result interface{}) {
	fmt.Fprintf(os.Stderr, "[100%%] completed\n")
}

func main() {
	videoID := flag.String("video", "", "YouTube video ID to analyze")
	flag.Parse()

	if *videoID == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.NewFromEnv(logger.LoadFromEnv())
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	ytClient := youtube.NewClient(&youtube.Config{
		APIKey:          cfg.YouTube.APIKey,
		BaseURL:         cfg.YouTube.BaseURL,
		MaxCommentPages: cfg.YouTube.MaxCommentPages,
		Timeout:         cfg.YouTube.Timeout,
	})

	rotator, err := llm.NewKeyRotator(cfg.LLM.Keys())
	if err != nil {
		log.Fatalf("Failed to initialize credential pool: %v", err)
	}

	pipeline := analysis.NewPipeline(analysis.PipelineConfig{
		Comments:    ytClient,
		Transcripts: youtube.NewTranscriptFetcher(ytClient),
		LLM:         llm.NewClient(&llm.Config{Model: cfg.LLM.Model, BaseURL: cfg.LLM.BaseURL}),
		Rotator:     rotator,
		Emitter:     stdoutEmitter{},
		MaxComments: cfg.Analysis.MaxComments,
	})

	result, err := pipeline.Run(context.Background(), uuid.NewString(), *videoID)
	if err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		log.Fatalf("Failed to encode result: %v", err)
	}
}
