package storage

import (
	"fmt"
	"sync"
)

// MemoryDirectory is an in-memory Directory. Listing order is insertion
// order. Faults can be injected per file name and per operation.
type MemoryDirectory struct {
	mu          sync.RWMutex
	name        string
	order       []string
	files       map[string][]byte
	dirs        map[string]bool
	permissions map[Mode]Permission
	grantOnAsk  bool
	createFault map[string]error
	writeFault  map[string]error
	deleteFault map[string]error
	listFault   error
}

type memoryHandle struct {
	dir  *MemoryDirectory
	name string
}

// NewMemoryDirectory creates an empty directory with read and readwrite
// permission granted
func NewMemoryDirectory(name string) *MemoryDirectory {
	return &MemoryDirectory{
		name:  name,
		files: make(map[string][]byte),
		dirs:  make(map[string]bool),
		permissions: map[Mode]Permission{
			ModeRead:      PermissionGranted,
			ModeReadWrite: PermissionGranted,
		},
		createFault: make(map[string]error),
		writeFault:  make(map[string]error),
		deleteFault: make(map[string]error),
	}
}

// AddFile adds (or replaces) a file with the given contents
func (d *MemoryDirectory) AddFile(name string, data []byte) *MemoryDirectory {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.files[name]; !exists {
		d.order = append(d.order, name)
	}
	d.files[name] = append([]byte(nil), data...)
	return d
}

// AddSubdirectory adds a sub-directory entry
func (d *MemoryDirectory) AddSubdirectory(name string) *MemoryDirectory {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.dirs[name] {
		d.order = append(d.order, name)
	}
	d.dirs[name] = true
	return d
}

// SetPermission sets the answer returned for mode. When grantOnAsk is true a
// RequestPermission call upgrades a "prompt" answer to granted.
func (d *MemoryDirectory) SetPermission(mode Mode, p Permission, grantOnAsk bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.permissions[mode] = p
	d.grantOnAsk = grantOnAsk
}

// FailCreate makes Create(name) return err
func (d *MemoryDirectory) FailCreate(name string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.createFault[name] = err
}

// FailWrite makes writes to name return err
func (d *MemoryDirectory) FailWrite(name string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.writeFault[name] = err
}

// FailDelete makes Delete(name) return err
func (d *MemoryDirectory) FailDelete(name string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.deleteFault[name] = err
}

// FailList makes List return err
func (d *MemoryDirectory) FailList(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listFault = err
}

// Files returns the current file names in listing order
func (d *MemoryDirectory) Files() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.files))
	for _, n := range d.order {
		if _, ok := d.files[n]; ok {
			names = append(names, n)
		}
	}
	return names
}

// Contents returns a copy of a file's bytes
func (d *MemoryDirectory) Contents(name string) ([]byte, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	data, ok := d.files[name]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), data...), true
}

func (d *MemoryDirectory) Name() string {
	return d.name
}

func (d *MemoryDirectory) List() ([]Entry, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.listFault != nil {
		return nil, d.listFault
	}
	if d.permissions[ModeRead] != PermissionGranted {
		return nil, fmt.Errorf("list %s: %w", d.name, ErrPermission)
	}

	entries := make([]Entry, 0, len(d.order))
	for _, n := range d.order {
		if d.dirs[n] {
			entries = append(entries, Entry{Name: n, Kind: KindDirectory})
		} else if _, ok := d.files[n]; ok {
			entries = append(entries, Entry{Name: n, Kind: KindFile, Handle: &memoryHandle{dir: d, name: n}})
		}
	}
	return entries, nil
}

func (d *MemoryDirectory) Open(name string) (ResourceHandle, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if _, ok := d.files[name]; !ok {
		return nil, fmt.Errorf("open %s: %w", name, ErrNotExist)
	}
	return &memoryHandle{dir: d, name: name}, nil
}

func (d *MemoryDirectory) Create(name string) (ResourceHandle, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.createFault[name]; err != nil {
		return nil, err
	}
	if d.permissions[ModeReadWrite] != PermissionGranted {
		return nil, fmt.Errorf("create %s: %w", name, ErrPermission)
	}
	if _, exists := d.files[name]; exists || d.dirs[name] {
		return nil, fmt.Errorf("create %s: %w", name, ErrExist)
	}

	d.files[name] = []byte{}
	d.order = append(d.order, name)
	return &memoryHandle{dir: d, name: name}, nil
}

func (d *MemoryDirectory) Delete(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.deleteFault[name]; err != nil {
		return err
	}
	if d.permissions[ModeReadWrite] != PermissionGranted {
		return fmt.Errorf("delete %s: %w", name, ErrPermission)
	}
	if _, exists := d.files[name]; !exists {
		return fmt.Errorf("delete %s: %w", name, ErrNotExist)
	}

	delete(d.files, name)
	for i, n := range d.order {
		if n == name {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	return nil
}

func (d *MemoryDirectory) QueryPermission(mode Mode) Permission {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.permissions[mode]
}

func (d *MemoryDirectory) RequestPermission(mode Mode) (Permission, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.permissions[mode] == PermissionPrompt && d.grantOnAsk {
		d.permissions[mode] = PermissionGranted
		if mode == ModeReadWrite {
			d.permissions[ModeRead] = PermissionGranted
		}
	}
	return d.permissions[mode], nil
}

func (h *memoryHandle) Name() string {
	return h.name
}

func (h *memoryHandle) Read() ([]byte, error) {
	h.dir.mu.RLock()
	defer h.dir.mu.RUnlock()
	data, ok := h.dir.files[h.name]
	if !ok {
		return nil, fmt.Errorf("read %s: %w", h.name, ErrNotExist)
	}
	return append([]byte(nil), data...), nil
}

func (h *memoryHandle) Write(data []byte) error {
	h.dir.mu.Lock()
	defer h.dir.mu.Unlock()
	if err := h.dir.writeFault[h.name]; err != nil {
		return err
	}
	if _, ok := h.dir.files[h.name]; !ok {
		return fmt.Errorf("write %s: %w", h.name, ErrNotExist)
	}
	h.dir.files[h.name] = append([]byte(nil), data...)
	return nil
}

func (h *memoryHandle) PermissionState(mode Mode) Permission {
	return h.dir.QueryPermission(mode)
}
