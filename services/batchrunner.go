package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"tunesmith/types"
	"tunesmith/websocket"

	"github.com/google/uuid"
)

// BatchRunner interface defines the methods for running renames in the background
type BatchRunner interface {
	SubmitBatch(stylePrompt string) (*types.BatchJob, error)
	SubmitSingle(fileID, stylePrompt string) (*types.BatchJob, error)
	GetJob(id string) (*types.BatchJob, bool)
	GetAllJobs() []*types.BatchJob
	CancelJob(id string) bool
	Wait(id string)
}

// batchRunner runs orchestrator jobs one at a time and keeps their history
type batchRunner struct {
	orchestrator *Orchestrator
	hub          websocket.Hub
	jobs         map[string]*types.BatchJob
	done         map[string]chan struct{}
	active       string
	cancelActive context.CancelFunc
	mu           sync.RWMutex
}

// NewBatchRunner creates a runner over orchestrator. hub may be nil.
func NewBatchRunner(orchestrator *Orchestrator, hub websocket.Hub) BatchRunner {
	return &batchRunner{
		orchestrator: orchestrator,
		hub:          hub,
		jobs:         make(map[string]*types.BatchJob),
		done:         make(map[string]chan struct{}),
	}
}

// SubmitBatch starts a rename of every selected file. A missing folder or an
// empty selection is rejected before a job is created.
func (br *batchRunner) SubmitBatch(stylePrompt string) (*types.BatchJob, error) {
	if br.orchestrator.Directory() == "" {
		return nil, &ValidationError{Message: "no folder loaded"}
	}
	if br.orchestrator.Status().SelectedCount == 0 {
		return nil, &ValidationError{Message: "no files selected"}
	}
	return br.submit(types.JobTypeBatch, "", stylePrompt)
}

// SubmitSingle starts a rename of one file
func (br *batchRunner) SubmitSingle(fileID, stylePrompt string) (*types.BatchJob, error) {
	if _, ok := br.orchestrator.Candidate(fileID); !ok {
		return nil, &ValidationError{Message: fmt.Sprintf("no file with id %q", fileID)}
	}
	return br.submit(types.JobTypeSingle, fileID, stylePrompt)
}

func (br *batchRunner) submit(jobType types.JobType, fileID, stylePrompt string) (*types.BatchJob, error) {
	br.mu.Lock()
	defer br.mu.Unlock()

	if br.active != "" || br.orchestrator.InFlight() {
		return nil, ErrBatchInFlight
	}

	job := &types.BatchJob{
		ID:          uuid.New().String(),
		Type:        jobType,
		Status:      types.JobStatusQueued,
		FileID:      fileID,
		StylePrompt: stylePrompt,
		CreatedAt:   time.Now(),
	}
	br.jobs[job.ID] = job
	br.done[job.ID] = make(chan struct{})
	br.active = job.ID

	ctx, cancel := context.WithCancel(context.Background())
	br.cancelActive = cancel

	snapshot := *job
	go br.run(ctx, job.ID)
	return &snapshot, nil
}

// run executes one job and records its outcome
func (br *batchRunner) run(ctx context.Context, id string) {
	defer func() {
		br.mu.Lock()
		br.cancelActive()
		br.active = ""
		br.cancelActive = nil
		close(br.done[id])
		br.mu.Unlock()
	}()

	br.setJobStatus(id, types.JobStatusProcessing, nil, "")
	job, _ := br.GetJob(id)
	if job.Status == types.JobStatusCancelled {
		br.setJobStatus(id, types.JobStatusCancelled, &types.BatchResult{}, "")
		log.Printf("Job %s cancelled before it started", id)
		return
	}

	progress := func(file types.CandidateFile, done, total int) {
		br.broadcastFile(id, file, done, total)
	}

	var (
		result types.BatchResult
		err    error
	)
	switch job.Type {
	case types.JobTypeSingle:
		result, err = br.orchestrator.RenameOne(ctx, job.FileID, job.StylePrompt, progress)
	default:
		result, err = br.orchestrator.RunBatch(ctx, job.StylePrompt, progress)
	}

	br.mu.RLock()
	cancelled := br.jobs[id].Status == types.JobStatusCancelled
	br.mu.RUnlock()

	switch {
	case cancelled:
		msg := ""
		if err != nil {
			msg = err.Error()
		}
		br.setJobStatus(id, types.JobStatusCancelled, &result, msg)
		log.Printf("Job %s cancelled: %d of %d files renamed", id, result.SuccessCount, result.TotalCount)
	case err != nil:
		br.setJobStatus(id, types.JobStatusFailed, &result, err.Error())
		log.Printf("Job %s failed: %v", id, err)
	default:
		br.setJobStatus(id, types.JobStatusCompleted, &result, "")
		log.Printf("Job %s completed: %d of %d files renamed", id, result.SuccessCount, result.TotalCount)
	}
}

// GetJob retrieves a copy of a job by ID
func (br *batchRunner) GetJob(id string) (*types.BatchJob, bool) {
	br.mu.RLock()
	defer br.mu.RUnlock()
	job, exists := br.jobs[id]
	if !exists {
		return nil, false
	}
	snapshot := *job
	return &snapshot, true
}

// GetAllJobs returns all jobs, newest first
func (br *batchRunner) GetAllJobs() []*types.BatchJob {
	br.mu.RLock()
	defer br.mu.RUnlock()

	jobs := make([]*types.BatchJob, 0, len(br.jobs))
	for _, job := range br.jobs {
		snapshot := *job
		jobs = append(jobs, &snapshot)
	}
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
	return jobs
}

// CancelJob asks the active job to stop before its next rename
func (br *batchRunner) CancelJob(id string) bool {
	br.mu.Lock()
	defer br.mu.Unlock()

	job, exists := br.jobs[id]
	if !exists || br.active != id {
		return false
	}
	if job.Status != types.JobStatusQueued && job.Status != types.JobStatusProcessing {
		return false
	}

	if br.cancelActive != nil {
		br.cancelActive()
	}
	job.Status = types.JobStatusCancelled
	return true
}

// Wait blocks until the job has finished. Unknown ids return immediately.
func (br *batchRunner) Wait(id string) {
	br.mu.RLock()
	ch, ok := br.done[id]
	br.mu.RUnlock()
	if ok {
		<-ch
	}
}

// setJobStatus updates job status and broadcasts it
func (br *batchRunner) setJobStatus(id string, status types.JobStatus, result *types.BatchResult, errorMsg string) {
	br.mu.Lock()
	defer br.mu.Unlock()

	job, exists := br.jobs[id]
	if !exists {
		return
	}
	// A cancel request wins over later transitions
	if job.Status == types.JobStatusCancelled && status != types.JobStatusCancelled {
		return
	}

	job.Status = status
	if result != nil {
		r := *result
		job.Result = &r
	}
	if errorMsg != "" {
		job.Error = errorMsg
	}

	now := time.Now()
	switch status {
	case types.JobStatusProcessing:
		if job.StartedAt == nil {
			job.StartedAt = &now
		}
	case types.JobStatusCompleted, types.JobStatusFailed, types.JobStatusCancelled:
		job.CompletedAt = &now
	}

	if br.hub == nil {
		return
	}

	event := types.BatchEvent{
		BatchID: id,
		Type:    "status",
		Status:  string(status),
		Message: string(status),
	}
	switch status {
	case types.JobStatusCompleted, types.JobStatusCancelled:
		event.Type = "complete"
		event.Progress = 100
		if job.Result != nil {
			event.Message = fmt.Sprintf("Renamed %d of %d files", job.Result.SuccessCount, job.Result.TotalCount)
		}
	case types.JobStatusFailed:
		event.Type = "error"
		event.Message = errorMsg
	case types.JobStatusProcessing:
		event.Message = fmt.Sprintf("Started %s rename", job.Type)
	}
	br.hub.BroadcastEvent(event)
}

// broadcastFile publishes one file transition
func (br *batchRunner) broadcastFile(id string, file types.CandidateFile, done, total int) {
	if br.hub == nil {
		return
	}
	progress := 0.0
	if total > 0 {
		progress = float64(done) / float64(total) * 100
	}
	br.hub.BroadcastEvent(types.BatchEvent{
		BatchID:  id,
		Type:     "file",
		Status:   string(file.Status),
		FileID:   file.ID,
		NewName:  file.NewName,
		Progress: progress,
		Message:  file.Error,
	})
}

// IsBusy reports whether err means another run is in flight
func IsBusy(err error) bool {
	return errors.Is(err, ErrBatchInFlight)
}
