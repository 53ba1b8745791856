package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"tunesmith/config"
	"tunesmith/storage"

	"github.com/gin-gonic/gin"
)

// SettingsHandler handles settings-related endpoints
type SettingsHandler struct{}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler() *SettingsHandler {
	return &SettingsHandler{}
}

// validatePath checks that path is an existing directory we can write to
func validatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("path is required")
	}

	dir, err := storage.NewLocalDirectory(path)
	if err != nil {
		return err
	}
	if dir.QueryPermission(storage.ModeReadWrite) != storage.PermissionGranted {
		return fmt.Errorf("%s is not writable: %w", dir.Name(), storage.ErrPermission)
	}
	return nil
}

// GetSettings returns the current settings with defaults filled in
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	settings := config.LoadSettings()
	if settings.MusicDirectory == "" {
		settings.MusicDirectory = config.GetMusicDirectory()
	}
	c.JSON(http.StatusOK, settings)
}

// UpdateSettings updates the user settings
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	var newSettings config.UserSettings
	if err := c.ShouldBindJSON(&newSettings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid settings format",
			"details": err.Error(),
		})
		return
	}

	// Validate the music directory path
	if err := validatePath(newSettings.MusicDirectory); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid music directory",
			"details": err.Error(),
		})
		return
	}

	newSettings.StylePrompt = strings.TrimSpace(newSettings.StylePrompt)

	if err := config.SaveSettings(newSettings); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to save settings",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Settings updated successfully",
		"settings": newSettings,
	})
}
