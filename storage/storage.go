// Package storage defines the filesystem collaborator used by the rename
// orchestrator, with local-disk and in-memory implementations.
package storage

import "io/fs"

// Mode is the access level requested on a directory or file
type Mode string

const (
	ModeRead      Mode = "read"
	ModeReadWrite Mode = "readwrite"
)

// Permission is the answer to a permission query or request
type Permission string

const (
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
	PermissionPrompt  Permission = "prompt"
)

// EntryKind distinguishes files from sub-directories in a listing
type EntryKind string

const (
	KindFile      EntryKind = "file"
	KindDirectory EntryKind = "directory"
)

// Sentinel errors shared by all implementations. They alias the io/fs
// errors so callers can use errors.Is with either.
var (
	ErrExist      = fs.ErrExist
	ErrNotExist   = fs.ErrNotExist
	ErrPermission = fs.ErrPermission
	ErrInvalid    = fs.ErrInvalid
)

// ResourceHandle is an opaque token for one file inside a Directory
type ResourceHandle interface {
	Name() string
	Read() ([]byte, error)
	Write(data []byte) error
	PermissionState(mode Mode) Permission
}

// Entry is a single item returned by Directory.List
type Entry struct {
	Name   string
	Kind   EntryKind
	Handle ResourceHandle // nil for directories
}

// Directory is a flat namespace of files the orchestrator may rename
type Directory interface {
	Name() string
	List() ([]Entry, error)
	Open(name string) (ResourceHandle, error)
	// Create makes a new empty file. It fails with ErrExist when name is taken.
	Create(name string) (ResourceHandle, error)
	Delete(name string) error
	QueryPermission(mode Mode) Permission
	RequestPermission(mode Mode) (Permission, error)
}
