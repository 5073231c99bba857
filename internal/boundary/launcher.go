package boundary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/roach88/awbridge/internal/api"
	"github.com/roach88/awbridge/internal/config"
	"github.com/roach88/awbridge/internal/deviceid"
	"github.com/roach88/awbridge/internal/dirs"
)

// ErrAlreadyRunning is returned by Start while a service is running.
var ErrAlreadyRunning = errors.New("server already running")

// Launcher runs the embedded HTTP service over the shared engine.
type Launcher struct {
	dir     *dirs.Cell
	res     *Resource
	testing bool
	version string

	mu     sync.Mutex
	cancel context.CancelFunc
	svc    *api.Service
}

// NewLauncher returns a launcher using dir for configuration and device
// identity and res for storage.
func NewLauncher(dir *dirs.Cell, res *Resource, testing bool, version string) *Launcher {
	return &Launcher{dir: dir, res: res, testing: testing, version: version}
}

// Start builds the service and serves until ctx is cancelled or Stop is
// called. It blocks for the lifetime of the service.
func (l *Launcher) Start(ctx context.Context) error {
	l.mu.Lock()
	if l.cancel != nil {
		l.mu.Unlock()
		return ErrAlreadyRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.mu.Unlock()

	defer func() {
		cancel()
		l.mu.Lock()
		l.cancel = nil
		l.svc = nil
		l.mu.Unlock()
	}()

	svc, err := l.build()
	if err != nil {
		return err
	}
	l.mu.Lock()
	l.svc = svc
	l.mu.Unlock()

	return svc.Launch(ctx)
}

// Stop cancels the running service. It reports whether one was running.
func (l *Launcher) Stop() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel == nil {
		return false
	}
	l.cancel()
	return true
}

// Addr returns the bound address of the running service, or "" when none is
// listening yet.
func (l *Launcher) Addr() string {
	l.mu.Lock()
	svc := l.svc
	l.mu.Unlock()
	if svc == nil {
		return ""
	}
	select {
	case <-svc.Ready():
		return svc.Addr()
	default:
		return ""
	}
}

func (l *Launcher) build() (*api.Service, error) {
	dir := l.dir.Get()

	base := config.Default()
	if l.testing {
		base = config.DefaultTesting()
	}
	cfg, err := config.Load(filepath.Join(dir, config.FileName), base)
	if err != nil {
		return nil, err
	}

	store, err := l.res.Get()
	if err != nil {
		return nil, err
	}

	id, err := deviceid.Get(dir)
	if err != nil {
		return nil, fmt.Errorf("device id: %w", err)
	}
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	slog.Debug("server state assembled", "device_id", id, "port", cfg.Port)

	state := &api.ServerState{
		Store:    store,
		DeviceID: id,
		Hostname: hostname,
		Version:  l.version,
		Gatherer: Gatherer(),
	}
	return api.Build(state, cfg), nil
}
