package boundary

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/roach88/awbridge/internal/api"
	"github.com/roach88/awbridge/internal/datastore"
	"github.com/roach88/awbridge/internal/dirs"
)

// Engine is the storage engine as seen by the boundary.
type Engine interface {
	api.Store
	Close() error
}

// OpenFunc constructs an Engine backed by the database file at path.
type OpenFunc func(path string) (Engine, error)

// OpenDatastore is the default OpenFunc.
func OpenDatastore(path string) (Engine, error) {
	return datastore.Open(path)
}

type openedEngine struct {
	engine Engine
	path   string
}

// Resource lazily opens the shared storage engine from the directory cell.
// At most one engine exists at a time. Failed opens are not cached, so a
// later call retries.
type Resource struct {
	dir     *dirs.Cell
	testing bool
	open    OpenFunc

	mu  sync.Mutex
	cur atomic.Pointer[openedEngine]
}

// NewResource returns a resource reading its location from dir.
func NewResource(dir *dirs.Cell, testing bool, open OpenFunc) *Resource {
	if open == nil {
		open = OpenDatastore
	}
	return &Resource{dir: dir, testing: testing, open: open}
}

// Get returns the shared engine, opening it on first use.
func (r *Resource) Get() (Engine, error) {
	if o := r.cur.Load(); o != nil {
		return o.engine, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if o := r.cur.Load(); o != nil {
		return o.engine, nil
	}

	dir := r.dir.Get()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		slog.Error("create data directory", "dir", dir, "error", err)
		return nil, fmt.Errorf("create data directory %s: %w", dir, err)
	}
	path := dirs.DBPath(dir, r.testing)
	engine, err := r.open(path)
	if err != nil {
		slog.Error("open datastore", "path", path, "error", err)
		return nil, fmt.Errorf("open datastore at %s: %w", path, err)
	}

	r.cur.Store(&openedEngine{engine: engine, path: path})
	slog.Info("datastore opened", "path", path)
	return engine, nil
}

// Path returns the location of the open engine, or "" if none is open.
func (r *Resource) Path() string {
	if o := r.cur.Load(); o != nil {
		return o.path
	}
	return ""
}

// Invalidate closes and drops the open engine. The next Get reopens it from
// the current directory cell value.
//
// Get hands out the engine without holding a reference count, so callers
// must stop every other use of the engine before calling Invalidate. An
// engine obtained earlier is closed underneath its holder and fails with
// sql: database is closed.
func (r *Resource) Invalidate() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o := r.cur.Swap(nil)
	if o == nil {
		return nil
	}
	slog.Info("datastore closed", "path", o.path)
	return o.engine.Close()
}
