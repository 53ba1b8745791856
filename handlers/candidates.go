package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"tunesmith/config"
	"tunesmith/services"
	"tunesmith/storage"

	"github.com/gin-gonic/gin"
)

// CandidateHandler handles folder loading and selection endpoints
type CandidateHandler struct {
	orchestrator *services.Orchestrator
	runner       services.BatchRunner
}

// NewCandidateHandler creates a new candidate handler
func NewCandidateHandler(orchestrator *services.Orchestrator, runner services.BatchRunner) *CandidateHandler {
	return &CandidateHandler{
		orchestrator: orchestrator,
		runner:       runner,
	}
}

type loadFolderRequest struct {
	Path string `json:"path"`
}

type renameRequest struct {
	StylePrompt string `json:"stylePrompt"`
}

// LoadFolder scans a folder and replaces the candidate list. An empty path
// loads the configured music directory.
func (h *CandidateHandler) LoadFolder(c *gin.Context) {
	var req loadFolderRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid folder request",
				"details": err.Error(),
			})
			return
		}
	}

	path := strings.TrimSpace(req.Path)
	if path == "" {
		path = config.GetMusicDirectory()
	}

	dir, err := storage.NewLocalDirectory(path)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid folder",
			"details": err.Error(),
		})
		return
	}

	result, err := h.orchestrator.LoadFolder(dir)
	if err != nil {
		log.Printf("Error loading folder %s: %v", path, err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"directory":  result.Directory,
		"outcome":    result.Outcome,
		"candidates": result.Candidates,
		"status":     h.orchestrator.Status(),
	})
}

// ListCandidates returns the candidate list and its derived status
func (h *CandidateHandler) ListCandidates(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"directory":  h.orchestrator.Directory(),
		"candidates": h.orchestrator.Candidates(),
		"status":     h.orchestrator.Status(),
	})
}

// Toggle flips the selection of one candidate
func (h *CandidateHandler) Toggle(c *gin.Context) {
	id := c.Param("id")
	if err := h.orchestrator.Toggle(id); err != nil {
		respondError(c, err)
		return
	}

	candidate, _ := h.orchestrator.Candidate(id)
	c.JSON(http.StatusOK, gin.H{
		"candidate": candidate,
		"status":    h.orchestrator.Status(),
	})
}

// ToggleAll selects or deselects every candidate
func (h *CandidateHandler) ToggleAll(c *gin.Context) {
	selected, err := h.orchestrator.ToggleAll()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"selected": selected,
		"status":   h.orchestrator.Status(),
	})
}

// RenameOne queues a rename of a single candidate
func (h *CandidateHandler) RenameOne(c *gin.Context) {
	var req renameRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid rename request",
				"details": err.Error(),
			})
			return
		}
	}

	job, err := h.runner.SubmitSingle(c.Param("id"), stylePromptOrDefault(req.StylePrompt))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message": "Rename queued successfully",
		"job":     job,
	})
}

// stylePromptOrDefault falls back to the saved style prompt
func stylePromptOrDefault(prompt string) string {
	if strings.TrimSpace(prompt) != "" {
		return prompt
	}
	return config.LoadSettings().StylePrompt
}

// respondError maps service errors to HTTP status codes
func respondError(c *gin.Context, err error) {
	var (
		validationErr *services.ValidationError
		permissionErr *services.PermissionError
		serviceErr    *services.ServiceError
	)

	status := http.StatusInternalServerError
	message := "Internal error"
	switch {
	case services.IsBusy(err):
		status = http.StatusConflict
		message = "A rename is already in progress"
	case errors.As(err, &validationErr):
		status = http.StatusBadRequest
		message = "Invalid request"
		if strings.HasPrefix(validationErr.Message, "no file with id") {
			status = http.StatusNotFound
			message = "File not found"
		}
	case errors.As(err, &permissionErr):
		status = http.StatusForbidden
		message = "Permission denied"
	case errors.As(err, &serviceErr):
		status = http.StatusBadGateway
		message = "AI service error"
		if serviceErr.RateLimited {
			status = http.StatusTooManyRequests
			message = "AI service is busy"
		}
	}

	c.JSON(status, gin.H{
		"error":   message,
		"details": err.Error(),
	})
}
