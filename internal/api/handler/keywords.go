package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rlou/tubescope/internal/keywords"
)

// KeywordsHandler handles keyword opportunity scoring.
type KeywordsHandler struct {
	service *keywords.Service
}

// NewKeywordsHandler creates a new keywords handler.
func NewKeywordsHandler(service *keywords.Service) *KeywordsHandler {
	return &KeywordsHandler{service: service}
}

type scoreRequest struct {
	Keyword string `json:"keyword" binding:"required"`
}

// Score handles POST /api/v1/keywords/score.
func (h *KeywordsHandler) Score(c *gin.Context) {
	var req scoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	opportunity, err := h.service.Score(c.Request.Context(), req.Keyword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Scoring failed: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, opportunity)
}
