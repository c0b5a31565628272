package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rlou/tubescope/internal/analysis"
	"github.com/rlou/tubescope/internal/api"
	"github.com/rlou/tubescope/internal/api/middleware"
	"github.com/rlou/tubescope/internal/config"
	"github.com/rlou/tubescope/internal/keywords"
	"github.com/rlou/tubescope/internal/llm"
	"github.com/rlou/tubescope/internal/logger"
	"github.com/rlou/tubescope/internal/progress"
	"github.com/rlou/tubescope/internal/queue"
	"github.com/rlou/tubescope/internal/repository"
	"github.com/rlou/tubescope/internal/validation"
	"github.com/rlou/tubescope/internal/youtube"
)

func main() {
	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	appLogger := logger.NewFromEnv(logger.LoadFromEnv())
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	// Initialize database
	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		logger.Error("Failed to initialize database: %v", err)
		os.Exit(1)
	}

	jobRepo := repository.NewJobRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)

	// External clients
	ytClient := youtube.NewClient(&youtube.Config{
		APIKey:          cfg.YouTube.APIKey,
		BaseURL:         cfg.YouTube.BaseURL,
		MaxCommentPages: cfg.YouTube.MaxCommentPages,
		Timeout:         cfg.YouTube.Timeout,
	})
	transcripts := youtube.NewTranscriptFetcher(ytClient)

	rotator, err := llm.NewKeyRotator(cfg.LLM.Keys())
	if err != nil {
		logger.Error("Failed to initialize credential pool: %v", err)
		os.Exit(1)
	}
	llmClient := llm.NewClient(&llm.Config{
		Model:   cfg.LLM.Model,
		BaseURL: cfg.LLM.BaseURL,
	})

	// Progress hub and analysis pipeline
	hub := progress.NewHub()
	pipeline := analysis.NewPipeline(analysis.PipelineConfig{
		Comments:    ytClient,
		Transcripts: transcripts,
		LLM:         llmClient,
		Rotator:     rotator,
		Emitter:     hub,
		MaxComments: cfg.Analysis.MaxComments,
	})

	jobQueue := queue.New(queue.Config{
		Repo:      jobRepo,
		Handler:   pipeline,
		Emitter:   hub,
		Workers:   cfg.Analysis.QueueWorkers,
		Retention: time.Duration(cfg.Analysis.JobRetention) * 24 * time.Hour,
	})
	defer jobQueue.Close()

	// Validation pipeline and keyword scoring
	validationPipeline := validation.NewPipeline(llmClient, rotator, ytClient, cfg.Validation.MaxToolIterations)
	keywordService := keywords.NewService(ytClient)

	// Setup router
	router := api.SetupRouter(api.Deps{
		Log:            appLogger,
		Queue:          jobQueue,
		Hub:            hub,
		Validation:     validationPipeline,
		Keywords:       keywordService,
		FeedbackRepo:   feedbackRepo,
		Mode:           cfg.Server.Mode,
		AllowedOrigins: cfg.Server.CORS.AllowedOrigins,
		RateLimit: middleware.RateLimitConfig{
			RequestsPerSecond: cfg.Server.RateLimit.RequestsPerSecond,
			Burst:             cfg.Server.RateLimit.Burst,
		},
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Starting API server on port %d (mode=%s)", cfg.Server.Port, cfg.Server.Mode)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Failed to start server: %v", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}
