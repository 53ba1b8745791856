package handlers

import (
	"net/http"
	"time"

	"tunesmith/config"
	"tunesmith/services"

	"github.com/gin-gonic/gin"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	orchestrator *services.Orchestrator
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(orchestrator *services.Orchestrator) *HealthHandler {
	return &HealthHandler{orchestrator: orchestrator}
}

// HealthCheck returns the health status of the service
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "tunesmith",
		"version":   "1.0.0",
		"timestamp": time.Now().Unix(),
	})
}

// APIStatus returns the status of the API and the loaded folder
func (h *HealthHandler) APIStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":         "Tunesmith API is running",
		"music_directory": config.GetMusicDirectory(),
		"loaded_folder":   h.orchestrator.Directory(),
		"model":           config.GetModel(),
		"ai_configured":   config.GetAPIKey() != "",
		"status":          h.orchestrator.Status(),
	})
}
