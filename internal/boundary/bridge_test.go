package boundary

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/awbridge/internal/dirs"
	"github.com/roach88/awbridge/internal/models"
	"github.com/roach88/awbridge/internal/testutil"
)

func newGolden(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func errorMessage(t *testing.T, text string) string {
	t.Helper()
	var obj map[string]string
	require.NoError(t, json.Unmarshal([]byte(text), &obj), "not an error object: %s", text)
	require.Contains(t, obj, "error")
	return obj["error"]
}

func TestBridge_CreateThenListBuckets(t *testing.T) {
	b, host := newTestBridge(t, nil)
	dir := filepath.Join(t.TempDir(), "aw-test")

	require.NoError(t, b.SetDataDir(host, hostString(t, host, dir)))
	got := takeResult(t, host, b.CreateBucket(host, hostString(t, host, `{"id":"b1","type":"test"}`)))
	assert.Equal(t, MsgBucketCreated, got)

	listing := takeResult(t, host, b.GetBuckets(host))
	var buckets []models.Bucket
	require.NoError(t, json.Unmarshal([]byte(listing), &buckets))
	require.Len(t, buckets, 1)
	assert.Equal(t, "b1", buckets[0].ID)
	assert.Equal(t, dirs.DBPath(dir, true), b.Resource().Path())
}

func TestBridge_GetBucketsEmptyIsArray(t *testing.T) {
	b, host := newTestBridge(t, nil)
	assert.Equal(t, "[]", takeResult(t, host, b.GetBuckets(host)))
}

func TestBridge_CreateBucketTwice(t *testing.T) {
	b, host := newTestBridge(t, nil)
	desc := `{"id":"b1","type":"test"}`

	takeResult(t, host, b.CreateBucket(host, hostString(t, host, desc)))
	got := takeResult(t, host, b.CreateBucket(host, hostString(t, host, desc)))
	assert.Contains(t, errorMessage(t, got), "Something went wrong when trying to create bucket")
}

func TestBridge_MalformedBucketNeverTouchesStorage(t *testing.T) {
	var opens atomic.Int32
	b, host := newTestBridge(t, countingOpen(&opens))

	for _, desc := range []string{`not json`, `{"id":"b1"}`, `{"type":"x"}`, `[]`} {
		got := takeResult(t, host, b.CreateBucket(host, hostString(t, host, desc)))
		assert.NotEmpty(t, errorMessage(t, got), desc)
	}
	assert.Zero(t, opens.Load())
	assert.Empty(t, b.Resource().Path())
}

func TestBridge_HeartbeatMissingBucket(t *testing.T) {
	b, host := newTestBridge(t, nil)
	event := `{"timestamp":"2024-03-01T10:00:00Z","duration":0,"data":{}}`

	got := takeResult(t, host, b.Heartbeat(host,
		hostString(t, host, "missing"), hostString(t, host, event), 5.0))
	assert.NotEmpty(t, errorMessage(t, got))
	newGolden(t).Assert(t, "heartbeat_missing_bucket", []byte(got))
}

func TestBridge_HeartbeatInvalidInput(t *testing.T) {
	b, host := newTestBridge(t, nil)
	takeResult(t, host, b.CreateBucket(host, hostString(t, host, `{"id":"b1","type":"test"}`)))

	got := takeResult(t, host, b.Heartbeat(host,
		hostString(t, host, "b1"), hostString(t, host, `{"duration":1}`), 5.0))
	assert.NotEmpty(t, errorMessage(t, got))

	got = takeResult(t, host, b.Heartbeat(host,
		hostString(t, host, "b1"), hostString(t, host, `{"timestamp":"2024-03-01T10:00:00Z"}`), -1))
	assert.Contains(t, errorMessage(t, got), "invalid pulsetime")

	assert.Equal(t, NullHandle, b.Heartbeat(host, NullHandle, hostString(t, host, "{}"), 1))
}

func TestBridge_HeartbeatOutOfRangeEventIsRejected(t *testing.T) {
	b, host := newTestBridge(t, nil)
	takeResult(t, host, b.CreateBucket(host, hostString(t, host, `{"id":"b1","type":"test"}`)))

	for _, hb := range []string{
		`{"timestamp":"2024-03-01T10:00:00Z","duration":1e12,"data":{}}`,
		`{"timestamp":"2300-01-01T00:00:00Z","duration":0,"data":{}}`,
	} {
		got := takeResult(t, host, b.Heartbeat(host, hostString(t, host, "b1"), hostString(t, host, hb), 5))
		assert.Contains(t, errorMessage(t, got), "invalid payload", hb)
	}

	assert.Equal(t, "[]", takeResult(t, host, b.GetEvents(host, hostString(t, host, "b1"), -1)))
}

func TestBridge_HeartbeatNonFinitePulsetime(t *testing.T) {
	b, host := newTestBridge(t, nil)
	takeResult(t, host, b.CreateBucket(host, hostString(t, host, `{"id":"b1","type":"test"}`)))

	for _, hb := range []string{
		`{"timestamp":"2024-03-01T10:00:00Z","duration":0,"data":{"app":"a"}}`,
		`{"timestamp":"2024-03-01T11:00:00Z","duration":0,"data":{"app":"a"}}`,
	} {
		got := takeResult(t, host, b.Heartbeat(host, hostString(t, host, "b1"), hostString(t, host, hb), math.Inf(1)))
		require.Equal(t, MsgHeartbeatReceived, got)
	}

	var events []models.Event
	listing := takeResult(t, host, b.GetEvents(host, hostString(t, host, "b1"), -1))
	require.NoError(t, json.Unmarshal([]byte(listing), &events))
	require.Len(t, events, 1, "an unbounded merge window merges equal data")
	assert.InDelta(t, 3600.0, events[0].Duration, 1e-9)

	for _, pulse := range []float64{math.NaN(), math.Inf(-1)} {
		got := takeResult(t, host, b.Heartbeat(host, hostString(t, host, "b1"),
			hostString(t, host, `{"timestamp":"2024-03-01T12:00:00Z","duration":0,"data":{"app":"a"}}`), pulse))
		assert.Contains(t, errorMessage(t, got), "invalid pulsetime")
	}
}

func TestBridge_GetEventsEmptyBucket(t *testing.T) {
	b, host := newTestBridge(t, nil)
	takeResult(t, host, b.CreateBucket(host, hostString(t, host, `{"id":"b1","type":"test"}`)))

	assert.Equal(t, "[]", takeResult(t, host, b.GetEvents(host, hostString(t, host, "b1"), 10)))
}

func TestBridge_GetEventsMissingBucket(t *testing.T) {
	b, host := newTestBridge(t, nil)
	got := takeResult(t, host, b.GetEvents(host, hostString(t, host, "nope"), 10))
	assert.Contains(t, errorMessage(t, got), "NO_SUCH_BUCKET")
}

func TestBridge_HeartbeatsThenEvents(t *testing.T) {
	b, host := newTestBridge(t, nil)
	takeResult(t, host, b.CreateBucket(host, hostString(t, host, `{"id":"b1","type":"test"}`)))

	for _, hb := range []string{
		`{"timestamp":"2024-03-01T10:00:00Z","duration":0,"data":{"app":"a"}}`,
		`{"timestamp":"2024-03-01T10:00:05Z","duration":0,"data":{"app":"a"}}`,
		`{"timestamp":"2024-03-01T10:01:00Z","duration":0,"data":{"app":"b"}}`,
	} {
		got := takeResult(t, host, b.Heartbeat(host, hostString(t, host, "b1"), hostString(t, host, hb), 10))
		require.Equal(t, MsgHeartbeatReceived, got)
	}

	listing := takeResult(t, host, b.GetEvents(host, hostString(t, host, "b1"), 10))
	newGolden(t).Assert(t, "events_after_heartbeats", []byte(listing))

	one := takeResult(t, host, b.GetEvents(host, hostString(t, host, "b1"), 1))
	var events []models.Event
	require.NoError(t, json.Unmarshal([]byte(one), &events))
	assert.Len(t, events, 1)

	all := takeResult(t, host, b.GetEvents(host, hostString(t, host, "b1"), -1))
	require.NoError(t, json.Unmarshal([]byte(all), &events))
	assert.Len(t, events, 2)
}

func TestBridge_Greet(t *testing.T) {
	b, host := newTestBridge(t, nil)

	assert.Equal(t, "Hello Ada (from Go!)", takeResult(t, host, b.Greet(host, hostString(t, host, "Ada"))))
	assert.Equal(t, "Hello there (from Go!)", takeResult(t, host, b.Greet(host, NullHandle)))
	assert.Equal(t, "Hello there (from Go!)", takeResult(t, host, b.Greet(host, hostString(t, host, "\xff"))))
}

func TestBridge_SetDataDirRejects(t *testing.T) {
	b, host := newTestBridge(t, nil)
	before := b.DataDir()

	assert.ErrorIs(t, b.SetDataDir(host, NullHandle), ErrNullHandle)
	assert.ErrorIs(t, b.SetDataDir(host, hostString(t, host, "")), dirs.ErrEmptyPath)
	assert.Error(t, b.SetDataDir(host, hostString(t, host, "bad\xffpath")))
	assert.Equal(t, before, b.DataDir())
}

func TestBridge_StorageUnavailableIsErrorObject(t *testing.T) {
	b, host := newTestBridge(t, failingOpen)

	got := takeResult(t, host, b.GetBuckets(host))
	assert.Contains(t, errorMessage(t, got), "disk on fire")

	got = takeResult(t, host, b.CreateBucket(host, hostString(t, host, `{"id":"b1","type":"test"}`)))
	assert.Contains(t, errorMessage(t, got), "Datastore unavailable")
}

// panicEngine fails every call with a panic.
type panicEngine struct{ Engine }

func (panicEngine) GetBuckets(context.Context) ([]models.Bucket, error) {
	panic("engine corrupted")
}

func (panicEngine) Close() error { return nil }

func TestBridge_EnginePanicYieldsNull(t *testing.T) {
	b, host := newTestBridge(t, func(string) (Engine, error) { return panicEngine{}, nil })

	var h Handle
	assert.NotPanics(t, func() { h = b.GetBuckets(host) })
	assert.Equal(t, NullHandle, h)

	// The embedded nil Engine panics too.
	assert.NotPanics(t, func() { h = b.GetEvents(host, hostString(t, host, "b1"), 1) })
	assert.Equal(t, NullHandle, h)
}

func TestBridge_HostAllocationFailureYieldsNull(t *testing.T) {
	b, _ := newTestBridge(t, nil)
	assert.Equal(t, NullHandle, b.GetBuckets(faultyHost{panicNew: true}))
	assert.Equal(t, NullHandle, b.GetBuckets(faultyHost{failNew: true}))
}

func TestBridge_OwnershipTransfer(t *testing.T) {
	b, host := newTestBridge(t, nil)

	name := hostString(t, host, "Ada")
	result := b.Greet(host, name)
	require.NotEqual(t, name, result)

	// The argument stays owned by the host; only the result is new.
	assert.Equal(t, 2, host.Live())
	require.NoError(t, host.Release(result))
	require.NoError(t, host.Release(name))
	assert.Zero(t, host.Live())
}

func TestBridge_ConcurrentEntryPoints(t *testing.T) {
	var opens atomic.Int32
	b, host := newTestBridge(t, countingOpen(&opens))
	takeResult(t, host, b.CreateBucket(host, hostString(t, host, testutil.BucketJSON("b1", "test"))))
	clock := testutil.NewEventClock(time.Second)

	var eg errgroup.Group
	for i := 0; i < 16; i++ {
		eg.Go(func() error {
			id, _ := host.NewString("b1")
			event, _ := host.NewString(testutil.EventJSON(clock.Next(), 0, nil))
			if s, _ := host.Take(b.Heartbeat(host, id, event, 60)); s != MsgHeartbeatReceived {
				return fmt.Errorf("heartbeat: %q", s)
			}
			if _, err := host.Take(b.GetEvents(host, id, 5)); err != nil {
				return fmt.Errorf("get events: %w", err)
			}
			return nil
		})
	}
	require.NoError(t, eg.Wait())
	assert.Equal(t, int32(1), opens.Load())
}
