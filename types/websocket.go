package types

import "time"

// BatchEvent represents a WebSocket update about a rename run
type BatchEvent struct {
	BatchID   string    `json:"batchId"`
	Type      string    `json:"type"`             // "status", "file", "complete", "error", "notify"
	Status    string    `json:"status,omitempty"` // job status or file status
	FileID    string    `json:"fileId,omitempty"`
	NewName   string    `json:"newName,omitempty"`
	Progress  float64   `json:"progress"` // 0-100 percentage
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
