package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const writeProbeName = ".tunesmith-write-test"

// localDirectory is a Directory backed by a folder on disk
type localDirectory struct {
	path string
}

// localHandle is a ResourceHandle for a file on disk
type localHandle struct {
	path string
}

// NewLocalDirectory returns a Directory rooted at path. The path must exist
// and be a directory.
func NewLocalDirectory(path string) (Directory, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid directory path: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory: %w", abs, ErrInvalid)
	}

	return &localDirectory{path: abs}, nil
}

// Name returns the absolute path of the directory
func (d *localDirectory) Name() string {
	return d.path
}

// List returns the directory entries sorted by file name
func (d *localDirectory) List() ([]Entry, error) {
	dirEntries, err := os.ReadDir(d.path)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		if de.IsDir() {
			entries = append(entries, Entry{Name: de.Name(), Kind: KindDirectory})
			continue
		}
		if !de.Type().IsRegular() || de.Name() == writeProbeName {
			continue
		}
		entries = append(entries, Entry{
			Name:   de.Name(),
			Kind:   KindFile,
			Handle: &localHandle{path: filepath.Join(d.path, de.Name())},
		})
	}
	return entries, nil
}

// Open returns a handle for an existing file
func (d *localDirectory) Open(name string) (ResourceHandle, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	full := filepath.Join(d.path, name)
	info, err := os.Stat(full)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory: %w", name, ErrInvalid)
	}
	return &localHandle{path: full}, nil
}

// Create makes a new empty file, refusing to replace an existing one
func (d *localDirectory) Create(name string) (ResourceHandle, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	full := filepath.Join(d.path, name)
	f, err := os.OpenFile(full, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, err
	}
	return &localHandle{path: full}, nil
}

// Delete removes a file from the directory
func (d *localDirectory) Delete(name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	return os.Remove(filepath.Join(d.path, name))
}

// QueryPermission reports whether the process can read (or read and write)
// the directory right now
func (d *localDirectory) QueryPermission(mode Mode) Permission {
	if _, err := os.ReadDir(d.path); err != nil {
		return PermissionDenied
	}
	if mode == ModeRead {
		return PermissionGranted
	}

	// Test write permissions by creating a temporary file
	probe := filepath.Join(d.path, writeProbeName)
	f, err := os.Create(probe)
	if err != nil {
		return PermissionDenied
	}
	f.Close()
	os.Remove(probe)

	return PermissionGranted
}

// RequestPermission has no prompt on local disk, so it answers like QueryPermission
func (d *localDirectory) RequestPermission(mode Mode) (Permission, error) {
	return d.QueryPermission(mode), nil
}

func (h *localHandle) Name() string {
	return filepath.Base(h.path)
}

func (h *localHandle) Read() ([]byte, error) {
	return os.ReadFile(h.path)
}

func (h *localHandle) Write(data []byte) error {
	f, err := os.OpenFile(h.path, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (h *localHandle) PermissionState(mode Mode) Permission {
	flag := os.O_RDONLY
	if mode == ModeReadWrite {
		flag = os.O_RDWR
	}
	f, err := os.OpenFile(h.path, flag, 0)
	if err != nil {
		return PermissionDenied
	}
	f.Close()
	return PermissionGranted
}

// validateName rejects names that would escape the flat directory namespace
func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("empty file name: %w", ErrInvalid)
	}
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return fmt.Errorf("invalid file name %q: %w", name, ErrInvalid)
	}
	return nil
}

// IsCollision reports whether err means the target name already exists
func IsCollision(err error) bool {
	return errors.Is(err, ErrExist)
}
