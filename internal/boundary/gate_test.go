package boundary

import (
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/sync/errgroup"
)

func TestGate_ConcurrentEnsureRunsOnce(t *testing.T) {
	var runs atomic.Int32
	g := NewGate(func() { runs.Add(1) })

	var eg errgroup.Group
	for i := 0; i < 64; i++ {
		eg.Go(func() error {
			g.Ensure()
			return nil
		})
	}
	assert.NoError(t, eg.Wait())
	assert.Equal(t, int32(1), runs.Load())
}

func TestGate_PanickingSetupCountsAsRun(t *testing.T) {
	var runs atomic.Int32
	g := NewGate(func() {
		runs.Add(1)
		panic("setup failed")
	})

	assert.Panics(t, g.Ensure)
	assert.NotPanics(t, g.Ensure)
	assert.Equal(t, int32(1), runs.Load())
}

func TestBridge_InitializeAnyOrder(t *testing.T) {
	var runs atomic.Int32
	b := New(Options{
		DataDir: t.TempDir(),
		LogHandler: func() slog.Handler {
			runs.Add(1)
			return slog.DiscardHandler
		},
	})
	host := NewMemHost()

	assert.NoError(t, b.SetDataDir(host, hostString(t, host, t.TempDir())))
	b.Initialize()
	b.Initialize()
	assert.Equal(t, int32(1), runs.Load())
}
