package boundary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"

	"github.com/roach88/awbridge/internal/dirs"
	"github.com/roach88/awbridge/internal/models"
)

// Success messages returned to the host.
const (
	MsgBucketCreated     = "Bucket successfully created"
	MsgHeartbeatReceived = "Heartbeat successfully received"
)

// errContained is returned by error-returning entry points after a panic.
var errContained = errors.New("operation aborted by contained panic")

// Options configures a Bridge.
type Options struct {
	// DataDir is the fallback data directory used until SetDataDir is
	// called. Empty selects the platform default.
	DataDir string
	Testing bool
	Version string
	// LogHandler builds the process log handler the first time any entry
	// point runs. Nil selects a text handler on stderr at debug level.
	LogHandler func() slog.Handler
	Open       OpenFunc
}

// Bridge owns all state shared by the entry points.
type Bridge struct {
	gate     *Gate
	dir      *dirs.Cell
	res      *Resource
	launcher *Launcher
}

// New returns a Bridge. Nothing is opened until first use.
func New(opts Options) *Bridge {
	fallback := opts.DataDir
	if fallback == "" {
		fallback = dirs.DefaultDataDir()
	}
	newHandler := opts.LogHandler
	if newHandler == nil {
		newHandler = func() slog.Handler {
			return slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
		}
	}

	dir := dirs.NewCell(fallback)
	res := NewResource(dir, opts.Testing, opts.Open)
	return &Bridge{
		gate: NewGate(func() {
			slog.SetDefault(slog.New(newHandler()))
			slog.Info("logger initialized", "testing", opts.Testing)
		}),
		dir:      dir,
		res:      res,
		launcher: NewLauncher(dir, res, opts.Testing, opts.Version),
	}
}

// Resource exposes the shared engine accessor.
func (b *Bridge) Resource() *Resource {
	return b.res
}

// Launcher exposes the embedded service launcher.
func (b *Bridge) Launcher() *Launcher {
	return b.launcher
}

// DataDir returns the current directory cell value.
func (b *Bridge) DataDir() string {
	return b.dir.Get()
}

func (b *Bridge) enter(op string) {
	b.gate.Ensure()
	metrics.calls.WithLabelValues(op).Inc()
}

// Initialize runs one-time setup. Safe to call any number of times.
func (b *Bridge) Initialize() {
	ContainVoid("initialize", func() {
		b.enter("initialize")
		slog.Debug("initialize called")
	})
}

// Greet returns "Hello <name> (from Go!)". Unreadable names are replaced
// with "there".
func (b *Bridge) Greet(host Host, name Handle) Handle {
	return Contain("greeting", NullHandle, func() Handle {
		b.enter("greeting")
		who, err := ToNative(host, name)
		if err != nil {
			slog.Warn("greeting name unreadable", "error", err)
			who = "there"
		}
		return b.reply(host, "greeting", fmt.Sprintf("Hello %s (from Go!)", who))
	})
}

// SetDataDir points the directory cell at path. It has no effect on an
// engine that is already open.
func (b *Bridge) SetDataDir(host Host, path Handle) error {
	return Contain("setDataDir", errContained, func() error {
		b.enter("setDataDir")
		dir, err := ToNative(host, path)
		if err != nil {
			slog.Error("data directory unreadable", "error", err)
			return err
		}
		if err := b.dir.Set(dir); err != nil {
			slog.Error("data directory rejected", "dir", dir, "error", err)
			return err
		}
		if open := b.res.Path(); open != "" {
			slog.Warn("data directory changed after datastore was opened",
				"dir", dir, "datastore", open)
		}
		slog.Info("data directory set", "dir", b.dir.Get())
		return nil
	})
}

// StartServer runs the embedded HTTP service, blocking until it stops.
func (b *Bridge) StartServer(ctx context.Context) error {
	return Contain("startServer", errContained, func() error {
		b.enter("startServer")
		slog.Info("starting server")
		err := b.launcher.Start(ctx)
		if err != nil {
			slog.Error("server exited", "error", err)
			return err
		}
		slog.Info("server exited")
		return nil
	})
}

// StopServer cancels the running service, if any.
func (b *Bridge) StopServer() bool {
	return Contain("stopServer", false, func() bool {
		b.enter("stopServer")
		stopped := b.launcher.Stop()
		slog.Info("stop requested", "was_running", stopped)
		return stopped
	})
}

// GetBuckets returns all buckets as a JSON array ordered by id.
func (b *Bridge) GetBuckets(host Host) Handle {
	const op = "getBuckets"
	return Contain(op, NullHandle, func() Handle {
		b.enter(op)
		store, err := b.res.Get()
		if err != nil {
			return b.errorObject(host, op, storeUnavailable(err))
		}
		buckets, err := store.GetBuckets(context.Background())
		if err != nil {
			return b.errorObject(host, op, fmt.Sprintf("Something went wrong when trying to get buckets: %v", err))
		}
		return b.replyJSON(host, op, buckets)
	})
}

// CreateBucket parses a bucket descriptor and creates it. The descriptor is
// validated before storage is touched.
func (b *Bridge) CreateBucket(host Host, bucket Handle) Handle {
	const op = "createBucket"
	return Contain(op, NullHandle, func() Handle {
		b.enter(op)
		raw, err := ToNative(host, bucket)
		if err != nil {
			slog.Error("bucket descriptor unreadable", "error", err)
			return NullHandle
		}
		parsed, err := models.ParseBucket([]byte(raw))
		if err != nil {
			return b.errorObject(host, op, err.Error())
		}

		store, err := b.res.Get()
		if err != nil {
			return b.errorObject(host, op, storeUnavailable(err))
		}
		if err := store.CreateBucket(context.Background(), parsed); err != nil {
			return b.errorObject(host, op, fmt.Sprintf("Something went wrong when trying to create bucket: %v", err))
		}
		slog.Debug("bucket created", "bucket", parsed.ID)
		return b.reply(host, op, MsgBucketCreated)
	})
}

// Heartbeat merges event into the bucket within pulsetime seconds. An
// infinite pulsetime merges every later heartbeat with equal data.
func (b *Bridge) Heartbeat(host Host, bucketID, event Handle, pulsetime float64) Handle {
	const op = "heartbeat"
	return Contain(op, NullHandle, func() Handle {
		b.enter(op)
		id, err := ToNative(host, bucketID)
		if err != nil {
			slog.Error("bucket id unreadable", "error", err)
			return NullHandle
		}
		raw, err := ToNative(host, event)
		if err != nil {
			slog.Error("event unreadable", "error", err)
			return NullHandle
		}
		hb, err := models.ParseEvent([]byte(raw))
		if err != nil {
			return b.errorObject(host, op, err.Error())
		}
		if math.IsNaN(pulsetime) || pulsetime < 0 {
			return b.errorObject(host, op, fmt.Sprintf("invalid pulsetime %v", pulsetime))
		}

		store, err := b.res.Get()
		if err != nil {
			return b.errorObject(host, op, storeUnavailable(err))
		}
		if _, err := store.Heartbeat(context.Background(), id, hb, pulsetime); err != nil {
			return b.errorObject(host, op, fmt.Sprintf("Something went wrong when trying to send heartbeat: %v", err))
		}
		return b.reply(host, op, MsgHeartbeatReceived)
	})
}

// GetEvents returns up to limit events of a bucket, newest first, as a JSON
// array. A negative limit returns all events.
func (b *Bridge) GetEvents(host Host, bucketID Handle, limit int32) Handle {
	const op = "getEvents"
	return Contain(op, NullHandle, func() Handle {
		b.enter(op)
		id, err := ToNative(host, bucketID)
		if err != nil {
			slog.Error("bucket id unreadable", "error", err)
			return NullHandle
		}

		store, err := b.res.Get()
		if err != nil {
			return b.errorObject(host, op, storeUnavailable(err))
		}
		events, err := store.GetEvents(context.Background(), id, nil, nil, int64(limit))
		if err != nil {
			return b.errorObject(host, op, fmt.Sprintf("Something went wrong when trying to get events: %v", err))
		}
		return b.replyJSON(host, op, events)
	})
}

func storeUnavailable(err error) string {
	return fmt.Sprintf("Datastore unavailable: %v", err)
}

func (b *Bridge) reply(host Host, op, s string) Handle {
	h, err := ToHost(host, s)
	if err != nil {
		slog.Error("result not marshaled", "op", op, "error", err)
		return NullHandle
	}
	return h
}

func (b *Bridge) replyJSON(host Host, op string, v any) Handle {
	out, err := json.Marshal(v)
	if err != nil {
		slog.Error("result not encoded", "op", op, "error", err)
		metrics.marshalFailures.WithLabelValues("encode").Inc()
		return NullHandle
	}
	return b.reply(host, op, string(out))
}

func (b *Bridge) errorObject(host Host, op, message string) Handle {
	metrics.errorObjects.WithLabelValues(op).Inc()
	slog.Warn("operation failed", "op", op, "error", message)
	return b.reply(host, op, BuildError(message))
}
