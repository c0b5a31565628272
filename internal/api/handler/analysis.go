package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rlou/tubescope/internal/domain"
	"github.com/rlou/tubescope/internal/progress"
	"github.com/rlou/tubescope/internal/queue"
	"gorm.io/gorm"
)

// AnalysisHandler handles job submission, status polling, and the
// progress event stream.
type AnalysisHandler struct {
	queue *queue.Queue
	hub   *progress.Hub
}

// NewAnalysisHandler creates a new analysis handler.
func NewAnalysisHandler(q *queue.Queue, hub *progress.Hub) *AnalysisHandler {
	return &AnalysisHandler{queue: q, hub: hub}
}

type analyzeRequest struct {
	VideoID string `json:"videoId" binding:"required"`
}

// Submit handles POST /api/v1/analyze. Returns 202 with the new job.
func (h *AnalysisHandler) Submit(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	jobID, err := h.queue.Enqueue(c.Request.Context(), req.VideoID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to enqueue job: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"jobId":   jobID,
		"videoId": req.VideoID,
		"status":  "pending",
	})
}

// Status handles GET /api/v1/analyze/:jobId.
func (h *AnalysisHandler) Status(c *gin.Context) {
	jobID := c.Param("jobId")

	job, err := h.queue.GetJob(c.Request.Context(), jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to load job: " + err.Error(),
		})
		return
	}

	resp := gin.H{
		"jobId":   job.ID,
		"videoId": job.VideoID,
		"status":  job.Status,
	}
	if job.Result.Result != nil {
		resp["result"] = job.Result.Result
	}
	if job.Error != "" {
		resp["error"] = job.Error
	}
	c.JSON(http.StatusOK, resp)
}

// Events handles GET /api/v1/analyze/:jobId/events: an NDJSON stream of
// progress events, closed when the job reaches a terminal stage or the
// client goes away. A job that is already terminal gets a single replayed
// terminal record instead of an open stream.
func (h *AnalysisHandler) Events(c *gin.Context) {
	jobID := c.Param("jobId")

	// Subscribe before the status check so a completion landing in
	// between is not lost.
	events, cancel := h.hub.Subscribe(jobID)
	defer cancel()

	job, err := h.queue.GetJob(c.Request.Context(), jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to load job: " + err.Error(),
		})
		return
	}

	c.Header("Content-Type", "application/x-ndjson")
	c.Header("Cache-Control", "no-cache")
	c.Status(http.StatusOK)

	flusher, _ := c.Writer.(http.Flusher)
	encoder := json.NewEncoder(c.Writer)

	if terminal := terminalEvent(job); terminal != nil {
		encoder.Encode(terminal)
		if flusher != nil {
			flusher.Flush()
		}
		return
	}

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := encoder.Encode(event); err != nil {
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
			if event.Stage == progress.StageCompleted || event.Stage == progress.StageFailed {
				return
			}
		}
	}
}

// terminalEvent reconstructs the closing event for a job that finished
// before the subscriber arrived. Returns nil for live jobs.
func terminalEvent(job *domain.AnalysisJob) *progress.Event {
	switch job.Status {
	case domain.JobStatusCompleted:
		event := &progress.Event{
			JobID:      job.ID,
			VideoID:    job.VideoID,
			Stage:      progress.StageCompleted,
			Message:    "analysis complete",
			Percentage: 100,
			Timestamp:  time.Now(),
		}
		if job.Result.Result != nil {
			event.Data = map[string]interface{}{"result": job.Result.Result}
		}
		return event
	case domain.JobStatusFailed:
		return &progress.Event{
			JobID:     job.ID,
			VideoID:   job.VideoID,
			Stage:     progress.StageFailed,
			Message:   job.Error,
			Timestamp: time.Now(),
		}
	}
	return nil
}
