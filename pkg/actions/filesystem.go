package actions

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

// defaultFileMode is used for files that do not exist yet.
const defaultFileMode fs.FileMode = 0o644

// FileSystem is the storage seam used by actions.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte) error
	Stat(path string) (fs.FileInfo, error)
}

// OSFileSystem reads and writes the local disk. Existing files keep their
// permission bits.
type OSFileSystem struct{}

// ReadFile implements [FileSystem].
func (OSFileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteFile implements [FileSystem].
func (OSFileSystem) WriteFile(path string, data []byte) error {
	mode := defaultFileMode
	if info, statErr := os.Stat(path); statErr == nil {
		mode = info.Mode().Perm()
	}

	return os.WriteFile(path, data, mode)
}

// Stat implements [FileSystem].
func (OSFileSystem) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// Change is a pending modification captured by [DryRunFileSystem].
type Change struct {
	Path    string
	Before  []byte
	After   []byte
	Created bool
}

// DryRunFileSystem records writes in memory instead of touching the disk.
// Reads observe earlier recorded writes, so several actions on one file
// compose exactly as they would on disk.
type DryRunFileSystem struct {
	base    FileSystem
	mu      sync.Mutex
	changes map[string]*Change
}

// NewDryRunFileSystem wraps base. A nil base reads from the local disk.
func NewDryRunFileSystem(base FileSystem) *DryRunFileSystem {
	if base == nil {
		base = OSFileSystem{}
	}

	return &DryRunFileSystem{base: base, changes: make(map[string]*Change)}
}

// ReadFile implements [FileSystem].
func (d *DryRunFileSystem) ReadFile(path string) ([]byte, error) {
	d.mu.Lock()
	change, ok := d.changes[filepath.Clean(path)]
	d.mu.Unlock()

	if ok {
		return bytes.Clone(change.After), nil
	}

	return d.base.ReadFile(path)
}

// WriteFile implements [FileSystem].
func (d *DryRunFileSystem) WriteFile(path string, data []byte) error {
	key := filepath.Clean(path)

	d.mu.Lock()
	defer d.mu.Unlock()

	if change, ok := d.changes[key]; ok {
		change.After = bytes.Clone(data)

		return nil
	}

	before, readErr := d.base.ReadFile(path)
	if readErr != nil && !errors.Is(readErr, fs.ErrNotExist) {
		return readErr
	}

	d.changes[key] = &Change{
		Path:    key,
		Before:  before,
		After:   bytes.Clone(data),
		Created: readErr != nil,
	}

	return nil
}

// Stat implements [FileSystem].
func (d *DryRunFileSystem) Stat(path string) (fs.FileInfo, error) {
	return d.base.Stat(path)
}

// Changes returns the recorded modifications sorted by path. Files written
// back to their original content are omitted.
func (d *DryRunFileSystem) Changes() []Change {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]Change, 0, len(d.changes))

	for _, change := range d.changes {
		if !change.Created && bytes.Equal(change.Before, change.After) {
			continue
		}

		out = append(out, *change)
	}

	slices.SortFunc(out, func(a, b Change) int {
		return strings.Compare(a.Path, b.Path)
	})

	return out
}

// PathLocks hands out one mutex per cleaned path. The zero value is ready
// to use and a nil *PathLocks performs no locking.
type PathLocks struct {
	locks sync.Map
}

// Lock blocks until path is free and returns the matching unlock function.
func (p *PathLocks) Lock(path string) func() {
	if p == nil {
		return func() {}
	}

	value, _ := p.locks.LoadOrStore(filepath.Clean(path), &sync.Mutex{})
	mu, _ := value.(*sync.Mutex)
	mu.Lock()

	return mu.Unlock
}
