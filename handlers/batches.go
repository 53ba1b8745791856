package handlers

import (
	"log"
	"net/http"

	"tunesmith/services"
	"tunesmith/websocket"

	"github.com/gin-gonic/gin"
)

// BatchHandler handles batch rename endpoints
type BatchHandler struct {
	runner services.BatchRunner
	hub    websocket.Hub
}

// NewBatchHandler creates a new batch handler
func NewBatchHandler(runner services.BatchRunner, hub websocket.Hub) *BatchHandler {
	return &BatchHandler{
		runner: runner,
		hub:    hub,
	}
}

// CreateBatch queues a rename of every selected file
func (h *BatchHandler) CreateBatch(c *gin.Context) {
	var req renameRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid batch request",
				"details": err.Error(),
			})
			return
		}
	}

	job, err := h.runner.SubmitBatch(stylePromptOrDefault(req.StylePrompt))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message": "Batch rename queued successfully",
		"job":     job,
	})
}

// GetAllJobs returns all batch jobs
func (h *BatchHandler) GetAllJobs(c *gin.Context) {
	jobs := h.runner.GetAllJobs()
	c.JSON(http.StatusOK, gin.H{
		"jobs":  jobs,
		"total": len(jobs),
	})
}

// GetJob returns a specific batch job by ID
func (h *BatchHandler) GetJob(c *gin.Context) {
	job, exists := h.runner.GetJob(c.Param("batchId"))
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "batch not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"job": job,
	})
}

// CancelJob stops a running batch before its next rename
func (h *BatchHandler) CancelJob(c *gin.Context) {
	if !h.runner.CancelJob(c.Param("batchId")) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "batch cannot be cancelled (not found or already finished)",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "batch cancelled successfully",
	})
}

// HandleWebSocketConnection streams the progress of one batch
func (h *BatchHandler) HandleWebSocketConnection(c *gin.Context) {
	batchID := c.Param("batchId")
	if _, exists := h.runner.GetJob(batchID); !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "batch not found"})
		return
	}
	h.serveWebSocket(c, batchID)
}

// HandleWebSocketAllConnection streams every batch and every notification
func (h *BatchHandler) HandleWebSocketAllConnection(c *gin.Context) {
	h.serveWebSocket(c, websocket.AllBatches)
}

func (h *BatchHandler) serveWebSocket(c *gin.Context, batchID string) {
	upgrader := websocket.GetUpgrader()
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := websocket.NewClient(h.hub, conn, batchID)
	h.hub.RegisterClient(client)
	client.StartPumps()
}
