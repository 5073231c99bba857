package models

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func event(offset, duration float64, data map[string]any) Event {
	return Event{
		Timestamp: base.Add(Seconds(offset)),
		Duration:  duration,
		Data:      data,
	}
}

func TestMergeHeartbeat(t *testing.T) {
	app := map[string]any{"app": "Chrome"}
	other := map[string]any{"app": "Maps"}

	tests := []struct {
		name      string
		last      Event
		hb        Event
		pulsetime float64
		wantOK    bool
		wantDur   float64
	}{
		{"within pulsetime extends", event(0, 10, app), event(12, 0, app), 5, true, 12},
		{"heartbeat inside last keeps end", event(0, 10, app), event(3, 2, app), 5, true, 10},
		{"heartbeat longer extends to its end", event(0, 10, app), event(8, 7, app), 5, true, 15},
		{"exactly at pulsetime edge", event(0, 10, app), event(15, 0, app), 5, true, 15},
		{"beyond pulsetime", event(0, 10, app), event(15.5, 0, app), 5, false, 0},
		{"different data", event(0, 10, app), event(11, 0, other), 5, false, 0},
		{"before last start", event(10, 10, app), event(9, 0, app), 5, false, 0},
		{"infinite pulsetime merges an hour later", event(0, 10, app), event(3600, 0, app), math.Inf(1), true, 3600},
		{"infinite pulsetime still needs equal data", event(0, 10, app), event(3600, 0, other), math.Inf(1), false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged, ok := MergeHeartbeat(tt.last, tt.hb, tt.pulsetime)
			require.Equal(t, tt.wantOK, ok)
			if !ok {
				return
			}
			assert.True(t, merged.Timestamp.Equal(tt.last.Timestamp))
			assert.InDelta(t, tt.wantDur, merged.Duration, 1e-9)
			assert.Equal(t, tt.last.Data, merged.Data)
		})
	}
}

func TestMergeHeartbeat_KeepsID(t *testing.T) {
	id := int64(7)
	last := event(0, 1, map[string]any{})
	last.ID = &id

	merged, ok := MergeHeartbeat(last, event(1, 0, map[string]any{}), 0)
	require.True(t, ok)
	require.NotNil(t, merged.ID)
	assert.Equal(t, int64(7), *merged.ID)
}
