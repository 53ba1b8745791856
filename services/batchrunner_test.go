package services

import (
	"context"
	"testing"
	"time"

	"tunesmith/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingGenerator waits for release before answering with count songs
func blockingGenerator(release <-chan struct{}) Generator {
	answer := countingGenerator()
	return GeneratorFunc(func(ctx context.Context, count int, stylePrompt string) ([]types.NameSuggestion, error) {
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return answer.Generate(ctx, count, stylePrompt)
	})
}

func TestBatchRunnerCompletesJob(t *testing.T) {
	dir := musicDir("a.mp3", "b.wav")
	o, _ := loadedOrchestrator(t, dir, fixedGenerator(songXY, songQR))
	hub := &recordingHub{}
	runner := NewBatchRunner(o, hub)

	job, err := runner.SubmitBatch("synthwave")
	require.NoError(t, err)
	assert.NotEmpty(t, job.ID)
	assert.Equal(t, types.JobTypeBatch, job.Type)
	assert.Equal(t, types.JobStatusQueued, job.Status)

	runner.Wait(job.ID)

	done, ok := runner.GetJob(job.ID)
	require.True(t, ok)
	assert.Equal(t, types.JobStatusCompleted, done.Status)
	require.NotNil(t, done.Result)
	assert.Equal(t, types.BatchResult{SuccessCount: 2, TotalCount: 2}, *done.Result)
	assert.NotNil(t, done.StartedAt)
	assert.NotNil(t, done.CompletedAt)
	assert.ElementsMatch(t, []string{"Y - X.mp3", "R - Q.wav"}, dir.Files())

	events := hub.Events()
	require.NotEmpty(t, events)
	assert.Equal(t, "status", events[0].Type)
	last := events[len(events)-1]
	assert.Equal(t, "complete", last.Type)
	assert.Equal(t, "Renamed 2 of 2 files", last.Message)
	assert.Equal(t, float64(100), last.Progress)

	var fileEvents int
	for _, e := range events {
		assert.Equal(t, job.ID, e.BatchID)
		if e.Type == "file" {
			fileEvents++
		}
	}
	assert.Equal(t, 4, fileEvents)
}

func TestBatchRunnerRejectsSecondJob(t *testing.T) {
	release := make(chan struct{})
	o, _ := loadedOrchestrator(t, musicDir("a.mp3"), blockingGenerator(release))
	runner := NewBatchRunner(o, nil)

	first, err := runner.SubmitBatch("")
	require.NoError(t, err)

	_, err = runner.SubmitBatch("")
	assert.True(t, IsBusy(err))
	_, err = runner.SubmitSingle("a.mp3", "")
	assert.True(t, IsBusy(err))

	close(release)
	runner.Wait(first.ID)

	job, _ := runner.GetJob(first.ID)
	assert.Equal(t, types.JobStatusCompleted, job.Status)

	second, err := runner.SubmitBatch("")
	require.NoError(t, err)
	runner.Wait(second.ID)
}

func TestBatchRunnerCancel(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	dir := musicDir("a.mp3", "b.wav")
	o, _ := loadedOrchestrator(t, dir, blockingGenerator(release))
	runner := NewBatchRunner(o, &recordingHub{})

	job, err := runner.SubmitBatch("")
	require.NoError(t, err)
	assert.True(t, runner.CancelJob(job.ID))
	assert.False(t, runner.CancelJob(job.ID), "already cancelled")

	runner.Wait(job.ID)

	cancelled, _ := runner.GetJob(job.ID)
	assert.Equal(t, types.JobStatusCancelled, cancelled.Status)
	assert.NotNil(t, cancelled.CompletedAt)
	assert.Equal(t, []string{"a.mp3", "b.wav"}, dir.Files())
	assert.False(t, o.InFlight())
}

func TestBatchRunnerSingleFile(t *testing.T) {
	dir := musicDir("a.mp3", "b.wav")
	o, _ := loadedOrchestrator(t, dir, fixedGenerator(songQR))
	runner := NewBatchRunner(o, nil)

	_, err := runner.SubmitSingle("missing.mp3", "")
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)

	job, err := runner.SubmitSingle("b.wav", "")
	require.NoError(t, err)
	assert.Equal(t, types.JobTypeSingle, job.Type)
	assert.Equal(t, "b.wav", job.FileID)
	runner.Wait(job.ID)

	done, _ := runner.GetJob(job.ID)
	assert.Equal(t, types.JobStatusCompleted, done.Status)
	assert.ElementsMatch(t, []string{"a.mp3", "R - Q.wav"}, dir.Files())
}

func TestBatchRunnerRecordsFailure(t *testing.T) {
	o, _ := loadedOrchestrator(t, musicDir("a.mp3"), fixedGenerator())
	hub := &recordingHub{}
	runner := NewBatchRunner(o, hub)

	job, err := runner.SubmitBatch("")
	require.NoError(t, err)
	runner.Wait(job.ID)

	failed, _ := runner.GetJob(job.ID)
	assert.Equal(t, types.JobStatusFailed, failed.Status)
	assert.Contains(t, failed.Error, "AI returned 0 suggestions for 1 files")

	events := hub.Events()
	assert.Equal(t, "error", events[len(events)-1].Type)
}

func TestBatchRunnerJobHistory(t *testing.T) {
	o, _ := loadedOrchestrator(t, musicDir("a.mp3"), countingGenerator())
	runner := NewBatchRunner(o, nil)

	var ids []string
	for i := 0; i < 3; i++ {
		job, err := runner.SubmitBatch("")
		require.NoError(t, err)
		runner.Wait(job.ID)
		ids = append(ids, job.ID)
		time.Sleep(time.Millisecond)
	}

	jobs := runner.GetAllJobs()
	require.Len(t, jobs, 3)
	assert.Equal(t, ids[2], jobs[0].ID)
	assert.Equal(t, ids[0], jobs[2].ID)

	_, ok := runner.GetJob("nope")
	assert.False(t, ok)
	assert.False(t, runner.CancelJob("nope"))
	runner.Wait("nope")
}

func TestBatchRunnerValidatesBeforeQueueing(t *testing.T) {
	empty := NewBatchRunner(NewOrchestrator(NewScanner(false), NewSuggestionClient(countingGenerator()), nil), nil)
	_, err := empty.SubmitBatch("")
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "no folder loaded", validationErr.Message)

	o, _ := loadedOrchestrator(t, musicDir("a.mp3"), countingGenerator())
	require.NoError(t, o.Toggle("a.mp3"))
	runner := NewBatchRunner(o, nil)

	_, err = runner.SubmitBatch("")
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "no files selected", validationErr.Message)
	assert.Empty(t, runner.GetAllJobs())
}
