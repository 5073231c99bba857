package boundary

import (
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestBridge(t *testing.T, open OpenFunc) (*Bridge, *MemHost) {
	t.Helper()
	b := New(Options{
		DataDir:    t.TempDir(),
		Testing:    true,
		Version:    "test",
		LogHandler: func() slog.Handler { return slog.DiscardHandler },
		Open:       open,
	})
	t.Cleanup(func() { _ = b.Resource().Invalidate() })
	return b, NewMemHost()
}

// hostString hands s to the bridge the way a host would.
func hostString(t *testing.T, host *MemHost, s string) Handle {
	t.Helper()
	h, err := host.NewString(s)
	require.NoError(t, err)
	return h
}

// takeResult claims ownership of a returned handle and returns its text.
func takeResult(t *testing.T, host *MemHost, h Handle) string {
	t.Helper()
	require.NotEqual(t, NullHandle, h, "expected a result, got the null handle")
	s, err := host.Take(h)
	require.NoError(t, err)
	return s
}

// countingOpen wraps OpenDatastore and counts calls.
func countingOpen(n *atomic.Int32) OpenFunc {
	return func(path string) (Engine, error) {
		n.Add(1)
		return OpenDatastore(path)
	}
}

func failingOpen(path string) (Engine, error) {
	return nil, errors.New("disk on fire")
}

// counterValue reads a labelled boundary counter.
func counterValue(t *testing.T, name, label string) float64 {
	t.Helper()
	families, err := metrics.registry.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetValue() == label {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}
