package api

import (
	"github.com/gin-gonic/gin"
	"github.com/rlou/tubescope/internal/api/handler"
	"github.com/rlou/tubescope/internal/api/middleware"
	"github.com/rlou/tubescope/internal/keywords"
	"github.com/rlou/tubescope/internal/logger"
	"github.com/rlou/tubescope/internal/progress"
	"github.com/rlou/tubescope/internal/queue"
	"github.com/rlou/tubescope/internal/repository"
	"github.com/rlou/tubescope/internal/validation"
)

// Deps collects everything the router wires into handlers.
type Deps struct {
	Log          *logger.Logger
	Queue        *queue.Queue
	Hub          *progress.Hub
	Validation   *validation.Pipeline
	Keywords     *keywords.Service
	FeedbackRepo *repository.FeedbackRepository

	Mode           string
	AllowedOrigins []string
	RateLimit      middleware.RateLimitConfig
}

// SetupRouter configures the Gin router with all routes
func SetupRouter(deps Deps) *gin.Engine {
	switch deps.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware(deps.Log))
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:  deps.AllowedOrigins,
		AllowAllOrigins: len(deps.AllowedOrigins) == 0,
	}))
	r.Use(middleware.RateLimit(deps.RateLimit))

	healthHandler := handler.NewHealthHandler()
	analysisHandler := handler.NewAnalysisHandler(deps.Queue, deps.Hub)
	validationHandler := handler.NewValidationHandler(deps.Validation)
	keywordsHandler := handler.NewKeywordsHandler(deps.Keywords)
	feedbackHandler := handler.NewFeedbackHandler(deps.FeedbackRepo)

	// Health check
	r.GET("/health", healthHandler.Health)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Video analysis jobs
		v1.POST("/analyze", analysisHandler.Submit)
		v1.GET("/analyze/:jobId", analysisHandler.Status)
		v1.GET("/analyze/:jobId/events", analysisHandler.Events)

		// Idea validation (streaming)
		v1.POST("/validate", validationHandler.Validate)

		// Keyword scoring
		v1.POST("/keywords/score", keywordsHandler.Score)

		// Feedback
		v1.POST("/feedback", feedbackHandler.Submit)
	}

	return r
}
