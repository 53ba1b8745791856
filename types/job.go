package types

import "time"

// JobType represents the kind of rename run
type JobType string

const (
	JobTypeBatch  JobType = "batch"
	JobTypeSingle JobType = "single"
)

// JobStatus represents the current status of a rename run
type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusCancelled  JobStatus = "cancelled"
)

// BatchJob tracks one submitted rename run
type BatchJob struct {
	ID          string       `json:"id"`
	Type        JobType      `json:"type"`
	Status      JobStatus    `json:"status"`
	FileID      string       `json:"fileId,omitempty"`
	StylePrompt string       `json:"stylePrompt,omitempty"`
	Result      *BatchResult `json:"result,omitempty"`
	Error       string       `json:"error,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	StartedAt   *time.Time   `json:"startedAt,omitempty"`
	CompletedAt *time.Time   `json:"completedAt,omitempty"`
}
