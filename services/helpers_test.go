package services

import (
	"context"
	"sync"
	"testing"

	"tunesmith/storage"
	"tunesmith/types"
	"tunesmith/websocket"

	"github.com/stretchr/testify/require"
)

// fakeGenerator returns canned suggestions and records every call
type fakeGenerator struct {
	mu      sync.Mutex
	calls   int
	counts  []int
	prompts []string
	reply   func(count int) ([]types.NameSuggestion, error)
}

func (g *fakeGenerator) Generate(ctx context.Context, count int, stylePrompt string) ([]types.NameSuggestion, error) {
	g.mu.Lock()
	g.calls++
	g.counts = append(g.counts, count)
	g.prompts = append(g.prompts, stylePrompt)
	g.mu.Unlock()
	return g.reply(count)
}

func (g *fakeGenerator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

// fixedGenerator always answers with songs, whatever count was asked for
func fixedGenerator(songs ...types.NameSuggestion) *fakeGenerator {
	return &fakeGenerator{reply: func(int) ([]types.NameSuggestion, error) {
		return songs, nil
	}}
}

// countingGenerator answers with exactly count numbered songs
func countingGenerator() *fakeGenerator {
	return &fakeGenerator{reply: func(count int) ([]types.NameSuggestion, error) {
		songs := make([]types.NameSuggestion, count)
		for i := range songs {
			songs[i] = types.NameSuggestion{Title: "Title " + string(rune('A'+i)), Artist: "Artist"}
		}
		return songs, nil
	}}
}

func failingGenerator(err error) *fakeGenerator {
	return &fakeGenerator{reply: func(int) ([]types.NameSuggestion, error) {
		return nil, err
	}}
}

// recordingNotifier keeps every notification
type recordingNotifier struct {
	mu    sync.Mutex
	items []types.Notification
}

func (r *recordingNotifier) Notify(n types.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

func (r *recordingNotifier) All() []types.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]types.Notification(nil), r.items...)
}

func (r *recordingNotifier) Last() types.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) == 0 {
		return types.Notification{}
	}
	return r.items[len(r.items)-1]
}

// recordingHub is a websocket.Hub that keeps broadcast events
type recordingHub struct {
	mu     sync.Mutex
	events []types.BatchEvent
}

var _ websocket.Hub = (*recordingHub)(nil)

func (h *recordingHub) Run()  {}
func (h *recordingHub) Stop() {}

func (h *recordingHub) BroadcastEvent(event types.BatchEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
}

func (h *recordingHub) Notify(n types.Notification) {
	h.BroadcastEvent(types.BatchEvent{BatchID: websocket.AllBatches, Type: "notify", Message: n.Title})
}

func (h *recordingHub) RegisterClient(*websocket.Client)   {}
func (h *recordingHub) UnregisterClient(*websocket.Client) {}
func (h *recordingHub) ClientCount() int                   { return 0 }

func (h *recordingHub) Events() []types.BatchEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]types.BatchEvent(nil), h.events...)
}

// musicDir creates an in-memory folder whose files hold their own name
func musicDir(names ...string) *storage.MemoryDirectory {
	dir := storage.NewMemoryDirectory("music")
	for _, n := range names {
		dir.AddFile(n, []byte("audio:"+n))
	}
	return dir
}

// loadedOrchestrator returns an orchestrator with dir already scanned
func loadedOrchestrator(t *testing.T, dir storage.Directory, gen Generator) (*Orchestrator, *recordingNotifier) {
	t.Helper()
	notifier := &recordingNotifier{}
	o := NewOrchestrator(NewScanner(false), NewSuggestionClient(gen), notifier)
	_, err := o.LoadFolder(dir)
	require.NoError(t, err)
	return o, notifier
}

// requireStatusInvariants checks that NewName and Error track Status
func requireStatusInvariants(t *testing.T, candidates []types.CandidateFile) {
	t.Helper()
	for _, c := range candidates {
		require.Equal(t, c.Status == types.FileStatusRenamed, c.NewName != "", "newName/status mismatch for %s", c.ID)
		require.Equal(t, c.Status == types.FileStatusError, c.Error != "", "error/status mismatch for %s", c.ID)
	}
}

func statuses(candidates []types.CandidateFile) []types.FileStatus {
	out := make([]types.FileStatus, len(candidates))
	for i, c := range candidates {
		out[i] = c.Status
	}
	return out
}
