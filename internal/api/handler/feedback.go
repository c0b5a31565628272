package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rlou/tubescope/internal/domain"
	"github.com/rlou/tubescope/internal/repository"
)

// FeedbackHandler handles user feedback on completed analyses.
type FeedbackHandler struct {
	repo *repository.FeedbackRepository
}

// NewFeedbackHandler creates a new feedback handler.
func NewFeedbackHandler(repo *repository.FeedbackRepository) *FeedbackHandler {
	return &FeedbackHandler{repo: repo}
}

type feedbackRequest struct {
	JobID   string `json:"jobId" binding:"required"`
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment"`
	Email   string `json:"email" binding:"omitempty,email"`
}

// Submit handles POST /api/v1/feedback.
func (h *FeedbackHandler) Submit(c *gin.Context) {
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	fb := &domain.Feedback{
		ID:      uuid.NewString(),
		JobID:   req.JobID,
		Rating:  req.Rating,
		Comment: req.Comment,
		Email:   req.Email,
	}
	if err := h.repo.Create(c.Request.Context(), fb); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to save feedback: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": fb.ID})
}
