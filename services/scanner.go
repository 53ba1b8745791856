package services

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"regexp"
	"strings"

	"tunesmith/storage"
	"tunesmith/types"

	"github.com/dhowden/tag"
)

// supportedExtensions is the set of audio extensions eligible for renaming
var supportedExtensions = map[string]string{
	".mp3":  "mp3",
	".wav":  "wav",
	".flac": "flac",
	".ogg":  "ogg",
	".m4a":  "m4a",
}

var trackPrefix = regexp.MustCompile(`^(\d+)[\.\-\s]+(.+)`)

// ScanOutcome distinguishes a scan that found files from one that found none
type ScanOutcome string

const (
	ScanFound     ScanOutcome = "found"
	ScanNoMatches ScanOutcome = "no_matches"
)

// ScanResult is the ordered list of candidates found in one folder
type ScanResult struct {
	Directory  string                `json:"directory"`
	Outcome    ScanOutcome           `json:"outcome"`
	Candidates []types.CandidateFile `json:"candidates"`
}

// Scanner interface defines methods for discovering candidate files
type Scanner interface {
	Scan(dir storage.Directory) (*ScanResult, error)
	ExtractAudioMetadata(handle storage.ResourceHandle) *types.AudioMetadata
	IsSupported(name string) bool
}

// scanner implements the Scanner interface
type scanner struct {
	readTags bool
}

// NewScanner creates a new directory scanner. When readTags is true every
// candidate gets tag hints at scan time; otherwise they are read on demand.
func NewScanner(readTags bool) Scanner {
	return &scanner{readTags: readTags}
}

// Scan requests readwrite access to dir and lists its supported audio files
// in listing order. Sub-directories are skipped.
func (s *scanner) Scan(dir storage.Directory) (*ScanResult, error) {
	result := &ScanResult{
		Directory:  dir.Name(),
		Outcome:    ScanNoMatches,
		Candidates: []types.CandidateFile{},
	}

	perm, err := dir.RequestPermission(storage.ModeReadWrite)
	if err != nil {
		return result, &PermissionError{Directory: dir.Name(), Mode: string(storage.ModeReadWrite), Err: err}
	}
	if perm != storage.PermissionGranted {
		return result, &PermissionError{Directory: dir.Name(), Mode: string(storage.ModeReadWrite)}
	}

	entries, err := dir.List()
	if err != nil {
		if errors.Is(err, storage.ErrPermission) {
			return result, &PermissionError{Directory: dir.Name(), Mode: string(storage.ModeRead), Err: err}
		}
		return result, fmt.Errorf("failed to list %s: %w", dir.Name(), err)
	}

	for _, entry := range entries {
		if entry.Kind != storage.KindFile || entry.Handle == nil || !s.IsSupported(entry.Name) {
			continue
		}

		candidate := types.CandidateFile{
			ID:       entry.Name,
			Name:     entry.Name,
			Handle:   entry.Handle,
			Selected: true,
			Status:   types.FileStatusIdle,
		}
		if s.readTags {
			candidate.Metadata = s.ExtractAudioMetadata(entry.Handle)
		}
		result.Candidates = append(result.Candidates, candidate)
	}

	if len(result.Candidates) > 0 {
		result.Outcome = ScanFound
	}
	return result, nil
}

// IsSupported reports whether name has a supported audio extension
func (s *scanner) IsSupported(name string) bool {
	_, ok := supportedExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

// ExtractAudioMetadata reads tag hints from the file, falling back to the file name
func (s *scanner) ExtractAudioMetadata(handle storage.ResourceHandle) *types.AudioMetadata {
	fallback := extractMetadataFromName(handle.Name())

	data, err := handle.Read()
	if err != nil {
		log.Printf("Warning: could not read audio file %s: %v", handle.Name(), err)
		return fallback
	}

	meta, err := tag.ReadFrom(bytes.NewReader(data))
	if err != nil {
		// Untagged files are common, keep the name-derived hints
		return fallback
	}

	metadata := &types.AudioMetadata{
		Title:  strings.TrimSpace(meta.Title()),
		Artist: strings.TrimSpace(meta.Artist()),
		Album:  strings.TrimSpace(meta.Album()),
		Format: fallback.Format,
	}
	if metadata.Title == "" {
		metadata.Title = fallback.Title
	}
	if metadata.Artist == "" {
		metadata.Artist = fallback.Artist
	}
	return metadata
}

// extractMetadataFromName derives hints from a file name like
// "01 - Artist - Title.mp3" or "Title.flac"
func extractMetadataFromName(name string) *types.AudioMetadata {
	metadata := &types.AudioMetadata{
		Format: supportedExtensions[strings.ToLower(filepath.Ext(name))],
	}

	stem := strings.TrimSpace(strings.TrimSuffix(name, filepath.Ext(name)))

	// Remove common track number prefixes like "01 - ", "1. ", etc.
	if matches := trackPrefix.FindStringSubmatch(stem); len(matches) > 2 {
		stem = matches[2]
	}

	if artist, title, ok := strings.Cut(stem, " - "); ok && strings.TrimSpace(artist) != "" && strings.TrimSpace(title) != "" {
		metadata.Artist = strings.TrimSpace(artist)
		metadata.Title = strings.TrimSpace(title)
		return metadata
	}

	metadata.Title = stem
	return metadata
}
