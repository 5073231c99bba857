package dirs

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
)

var (
	// ErrEmptyPath is returned when the host hands over an empty directory.
	ErrEmptyPath = errors.New("data directory is empty")

	// ErrInvalidPath is returned for paths the OS cannot represent.
	ErrInvalidPath = errors.New("data directory contains a NUL byte")
)

// Cell is a lock-guarded directory path.
//
// Thread-safety: all methods are safe for concurrent use. A value is never
// observed half-written.
type Cell struct {
	mu       sync.Mutex
	path     string
	writes   int
	poisoned bool
}

// NewCell creates a cell holding the given fallback path.
func NewCell(fallback string) *Cell {
	return &Cell{path: fallback}
}

// Get returns the current path.
//
// If a previous writer failed while holding the lock, the last successfully
// written value is returned and the poison flag is cleared.
func (c *Cell) Get() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.poisoned {
		slog.Warn("data dir cell recovered after failed writer", "path", c.path)
		c.poisoned = false
	}
	return c.path
}

// Set validates and stores a new path.
//
// Overwriting an already overridden value is tolerated but logged, since the
// host is expected to set the directory once per session.
func (c *Cell) Set(path string) error {
	if path == "" {
		return ErrEmptyPath
	}
	if strings.ContainsRune(path, 0) {
		return fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	cleaned := filepath.Clean(path)

	c.Update(func(current string) string {
		if c.writes > 0 && current != cleaned {
			slog.Warn("data dir overwritten", "previous", current, "path", cleaned)
		}
		return cleaned
	})
	slog.Debug("data dir set", "path", cleaned)
	return nil
}

// Update replaces the path with fn(current) while holding the lock.
//
// If fn panics the stored value is left untouched, the cell is marked
// poisoned and the panic continues to unwind into the caller.
func (c *Cell) Update(fn func(current string) string) {
	c.mu.Lock()
	committed := false
	defer func() {
		if !committed {
			c.poisoned = true
			slog.Error("data dir writer failed while holding lock", "kept", c.path)
		}
		c.mu.Unlock()
	}()

	next := fn(c.path)
	c.path = next
	c.writes++
	committed = true
}

// Poisoned reports whether the last writer failed while holding the lock and
// no reader has recovered the cell since.
func (c *Cell) Poisoned() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.poisoned
}

// Overridden reports whether the fallback has been replaced at least once.
func (c *Cell) Overridden() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writes > 0
}
