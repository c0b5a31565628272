package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rlou/tubescope/internal/domain"
	"github.com/rlou/tubescope/internal/progress"
	"github.com/rlou/tubescope/internal/validation"
)

// ValidationHandler handles the synchronous-streaming idea validation
// endpoint: one request held open, NDJSON log records throughout, then a
// final record and stream close.
type ValidationHandler struct {
	pipeline *validation.Pipeline
}

// NewValidationHandler creates a new validation handler.
func NewValidationHandler(pipeline *validation.Pipeline) *ValidationHandler {
	return &ValidationHandler{pipeline: pipeline}
}

type validateRequest struct {
	Idea           string `json:"idea" binding:"required"`
	TargetAudience string `json:"targetAudience"`
	Goal           string `json:"goal"`
}

// Validate handles POST /api/v1/validate.
func (h *ValidationHandler) Validate(c *gin.Context) {
	var req validateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	input := domain.ValidationInput{
		Idea:           req.Idea,
		TargetAudience: req.TargetAudience,
		Goal:           req.Goal,
		JobID:          uuid.NewString(),
	}

	c.Header("Content-Type", "application/x-ndjson")
	c.Header("Cache-Control", "no-cache")
	c.Status(http.StatusOK)

	stream := progress.NewStreamWriter(c.Writer, nil)
	// Validate emits Final and End on every path; errors have already
	// been streamed to the client by the time it returns.
	h.pipeline.Validate(c.Request.Context(), input, stream)
}
