package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"tunesmith/storage"
	"tunesmith/types"
)

// Orchestrator owns the candidate list of the current folder and runs at
// most one rename at a time. Reads are safe from any goroutine.
type Orchestrator struct {
	mu         sync.RWMutex
	dir        storage.Directory
	candidates []types.CandidateFile
	running    bool
	cancel     context.CancelFunc

	scanner     Scanner
	suggestions SuggestionClient
	notifier    Notifier
}

// NewOrchestrator creates an orchestrator with no folder loaded. A nil
// notifier logs outcomes.
func NewOrchestrator(scanner Scanner, suggestions SuggestionClient, notifier Notifier) *Orchestrator {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &Orchestrator{
		scanner:     scanner,
		suggestions: suggestions,
		notifier:    notifier,
		candidates:  []types.CandidateFile{},
	}
}

// LoadFolder scans dir and replaces the candidate list with the result.
// A PermissionError leaves an empty list.
func (o *Orchestrator) LoadFolder(dir storage.Directory) (*ScanResult, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.running {
		return nil, ErrBatchInFlight
	}

	result, err := o.scanner.Scan(dir)
	if err != nil {
		o.dir = nil
		o.candidates = []types.CandidateFile{}

		var permErr *PermissionError
		if errors.As(err, &permErr) {
			o.notifier.Notify(types.Notification{
				Severity:    types.SeverityDestructive,
				Title:       "Permission Denied",
				Description: fmt.Sprintf("Read and write access to %s is required to rename files.", dir.Name()),
			})
		} else {
			o.notifier.Notify(types.Notification{
				Severity:    types.SeverityDestructive,
				Title:       "Scan Failed",
				Description: err.Error(),
			})
		}
		return result, err
	}

	o.dir = dir
	o.candidates = make([]types.CandidateFile, len(result.Candidates))
	copy(o.candidates, result.Candidates)

	if result.Outcome == ScanNoMatches {
		o.notifier.Notify(types.Notification{
			Severity:    types.SeverityInfo,
			Title:       "No Audio Files Found",
			Description: fmt.Sprintf("%s contains no supported audio files.", dir.Name()),
		})
	} else {
		o.notifier.Notify(types.Notification{
			Severity:    types.SeveritySuccess,
			Title:       "Folder Loaded",
			Description: fmt.Sprintf("Found %d audio files in %s.", len(result.Candidates), dir.Name()),
		})
	}

	log.Printf("Loaded %d candidates from %s", len(result.Candidates), dir.Name())
	return result, nil
}

// Directory returns the name of the loaded folder, or "" when none is loaded
func (o *Orchestrator) Directory() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.dir == nil {
		return ""
	}
	return o.dir.Name()
}

// Candidates returns a copy of the candidate list in scan order
func (o *Orchestrator) Candidates() []types.CandidateFile {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]types.CandidateFile, len(o.candidates))
	copy(out, o.candidates)
	return out
}

// Candidate returns the candidate with the given id
func (o *Orchestrator) Candidate(id string) (types.CandidateFile, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	for _, c := range o.candidates {
		if c.ID == id {
			return c, true
		}
	}
	return types.CandidateFile{}, false
}

// Status returns the derived view of the candidate list
func (o *Orchestrator) Status() types.StatusView {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return Project(o.candidates, o.running)
}

// InFlight reports whether a run has not settled yet
func (o *Orchestrator) InFlight() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.running
}

// Toggle flips the selection of one candidate
func (o *Orchestrator) Toggle(id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.running {
		return ErrBatchInFlight
	}
	return toggleSelected(o.candidates, id)
}

// ToggleAll selects every candidate, or deselects every candidate when all
// are already selected. It returns the new selection value.
func (o *Orchestrator) ToggleAll() (bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.running {
		return false, ErrBatchInFlight
	}
	return toggleAllSelected(o.candidates), nil
}

// Cancel stops the in-flight run before its next rename. It reports whether
// a run was in flight.
func (o *Orchestrator) Cancel() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.running || o.cancel == nil {
		return false
	}
	o.cancel()
	return true
}

// RunBatch renames every selected candidate using one suggestion request.
// Per-file failures are recorded on the rows; the returned error is only
// set for batch-level failures.
func (o *Orchestrator) RunBatch(ctx context.Context, stylePrompt string, progress Progress) (types.BatchResult, error) {
	ctx, err := o.begin(ctx)
	if err != nil {
		return types.BatchResult{}, err
	}
	defer o.end()

	o.mu.RLock()
	indices := selectedIndices(o.candidates)
	o.mu.RUnlock()

	if len(indices) == 0 {
		err := &ValidationError{Message: "no files selected"}
		o.notifier.Notify(types.Notification{
			Severity:    types.SeverityDestructive,
			Title:       "No Files Selected",
			Description: "Select at least one file to rename.",
		})
		return types.BatchResult{}, err
	}

	log.Printf("Starting batch rename of %d files in %s", len(indices), o.dir.Name())
	result, err := o.execute(ctx, indices, stylePrompt, progress)
	o.notifyOutcome(result, err)
	return result, err
}

// RenameOne renames a single candidate regardless of selection, asking for
// exactly one suggestion seeded with the file's current name and tags
func (o *Orchestrator) RenameOne(ctx context.Context, id, stylePrompt string, progress Progress) (types.BatchResult, error) {
	ctx, err := o.begin(ctx)
	if err != nil {
		return types.BatchResult{}, err
	}
	defer o.end()

	idx, file, ok := o.lookup(id)
	if !ok {
		return types.BatchResult{}, &ValidationError{Message: fmt.Sprintf("no file with id %q", id)}
	}

	if file.Metadata == nil && file.Handle != nil {
		meta := o.scanner.ExtractAudioMetadata(file.Handle)
		file = o.transition(idx, func(c *types.CandidateFile) { c.Metadata = meta })
	}

	result, err := o.execute(ctx, []int{idx}, singleFilePrompt(file, stylePrompt), progress)
	o.notifyOutcome(result, err)
	return result, err
}

// singleFilePrompt seeds the style prompt with what is known about the file
func singleFilePrompt(file types.CandidateFile, stylePrompt string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Come up with a completely new, creative and plausible name for the audio file %q.", file.Name)
	if file.Metadata != nil {
		if file.Metadata.Title != "" {
			fmt.Fprintf(&b, " Its current title is %q.", file.Metadata.Title)
		}
		if file.Metadata.Artist != "" {
			fmt.Fprintf(&b, " Its current artist is %q.", file.Metadata.Artist)
		}
	}
	if s := strings.TrimSpace(stylePrompt); s != "" {
		b.WriteString(" ")
		b.WriteString(s)
	}
	return b.String()
}

// begin claims the in-flight slot
func (o *Orchestrator) begin(parent context.Context) (context.Context, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.running {
		return nil, ErrBatchInFlight
	}
	if o.dir == nil {
		return nil, &ValidationError{Message: "no folder loaded"}
	}

	ctx, cancel := context.WithCancel(parent)
	o.running = true
	o.cancel = cancel
	return ctx, nil
}

// end releases the in-flight slot
func (o *Orchestrator) end() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cancel != nil {
		o.cancel()
	}
	o.running = false
	o.cancel = nil
}

func (o *Orchestrator) lookup(id string) (int, types.CandidateFile, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	for i, c := range o.candidates {
		if c.ID == id {
			return i, c, true
		}
	}
	return -1, types.CandidateFile{}, false
}

func (o *Orchestrator) at(idx int) (types.CandidateFile, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if idx < 0 || idx >= len(o.candidates) {
		return types.CandidateFile{}, false
	}
	return o.candidates[idx], true
}

// transition applies mutate to the candidate at idx and returns a copy
func (o *Orchestrator) transition(idx int, mutate func(c *types.CandidateFile)) types.CandidateFile {
	o.mu.Lock()
	defer o.mu.Unlock()
	mutate(&o.candidates[idx])
	return o.candidates[idx]
}

func (o *Orchestrator) notifyOutcome(result types.BatchResult, err error) {
	if err != nil {
		title := "Rename Failed"
		if IsRateLimited(err) {
			title = "AI Service Busy"
		}
		o.notifier.Notify(types.Notification{
			Severity:    types.SeverityDestructive,
			Title:       title,
			Description: err.Error(),
		})
		return
	}

	n := types.Notification{
		Severity:    types.SeveritySuccess,
		Title:       "Batch Rename Complete",
		Description: fmt.Sprintf("Renamed %d of %d files.", result.SuccessCount, result.TotalCount),
	}
	switch {
	case result.SuccessCount == 0:
		n.Severity = types.SeverityDestructive
		n.Title = "Batch Rename Failed"
	case result.SuccessCount < result.TotalCount:
		n.Severity = types.SeverityInfo
		n.Title = "Batch Rename Finished With Errors"
	}
	o.notifier.Notify(n)
}
