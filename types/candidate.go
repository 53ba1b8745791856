package types

import "tunesmith/storage"

// FileStatus represents where a candidate file is in the rename lifecycle
type FileStatus string

const (
	FileStatusIdle     FileStatus = "idle"
	FileStatusRenaming FileStatus = "renaming"
	FileStatusRenamed  FileStatus = "renamed"
	FileStatusError    FileStatus = "error"
)

// CandidateFile is an audio file discovered by a folder scan
type CandidateFile struct {
	ID       string                 `json:"id"`
	Name     string                 `json:"name"`
	Handle   storage.ResourceHandle `json:"-"`
	Selected bool                   `json:"selected"`
	Status   FileStatus             `json:"status"`
	NewName  string                 `json:"newName,omitempty"`
	Error    string                 `json:"error,omitempty"`
	Metadata *AudioMetadata         `json:"metadata,omitempty"`
}

// NameSuggestion is one generated {title, artist} pair
type NameSuggestion struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
}

// BatchResult is the aggregate outcome of one rename run
type BatchResult struct {
	SuccessCount int `json:"successCount"`
	TotalCount   int `json:"totalCount"`
}

// StatusView is the derived, read-only state of the candidate list
type StatusView struct {
	Total         int  `json:"total"`
	SelectedCount int  `json:"selectedCount"`
	RenamedCount  int  `json:"renamedCount"`
	ErrorCount    int  `json:"errorCount"`
	IsAnyBusy     bool `json:"isAnyBusy"`
	AllSelected   bool `json:"allSelected"`
	InFlight      bool `json:"inFlight"`
}
