package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"tunesmith/config"
	"tunesmith/services"
	"tunesmith/types"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// TestHelper provides utilities for testing the Tunesmith server
type TestHelper struct {
	MusicDir string
	Services *Services
	Router   *gin.Engine
}

// NewTestHelper creates a router over a temporary music folder holding files
func NewTestHelper(t *testing.T, files ...string) *TestHelper {
	t.Helper()
	gin.SetMode(gin.TestMode)

	musicDir := writeMusicDir(t, files...)
	useSettingsFile(t)

	svc := NewServices(numberedGenerator())
	go svc.Hub.Run()
	t.Cleanup(svc.Hub.Stop)

	return &TestHelper{
		MusicDir: musicDir,
		Services: svc,
		Router:   NewRouter(svc),
	}
}

// Do sends a request with an optional JSON body and decodes the response into out
func (h *TestHelper) Do(t *testing.T, method, path string, body, out interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.Router.ServeHTTP(rec, req)

	if out != nil {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), "body: %s", rec.Body.String())
	}
	return rec
}

// Files lists the music folder on disk
func (h *TestHelper) Files(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(h.MusicDir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

// numberedGenerator answers with "Artist N - Song N" for each requested name
func numberedGenerator() services.Generator {
	return services.GeneratorFunc(func(ctx context.Context, count int, stylePrompt string) ([]types.NameSuggestion, error) {
		songs := make([]types.NameSuggestion, count)
		for i := range songs {
			songs[i] = types.NameSuggestion{
				Title:  fmt.Sprintf("Song %d", i+1),
				Artist: fmt.Sprintf("Artist %d", i+1),
			}
		}
		return songs, nil
	})
}

func writeMusicDir(t *testing.T, files ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("audio:"+name), 0644))
	}
	return dir
}

func useSettingsFile(t *testing.T) {
	t.Helper()
	saved := config.SettingsPath
	config.SettingsPath = filepath.Join(t.TempDir(), "settings.json")
	t.Cleanup(func() { config.SettingsPath = saved })
}
