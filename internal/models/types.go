package models

import (
	"fmt"
	"math"
	"time"
)

// Bucket is a named collection of timestamped events.
type Bucket struct {
	ID       string         `json:"id"`
	Name     string         `json:"name,omitempty"`
	Type     string         `json:"type"`
	Client   string         `json:"client"`
	Hostname string         `json:"hostname"`
	Created  *time.Time     `json:"created,omitempty"`
	Data     map[string]any `json:"data"`
	Metadata BucketMetadata `json:"metadata"`
}

// BucketMetadata is computed from the stored events on read.
type BucketMetadata struct {
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`
}

// Event is a single timestamped record with a duration in seconds.
type Event struct {
	ID        *int64         `json:"id,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Duration  float64        `json:"duration"`
	Data      map[string]any `json:"data"`
}

// End returns Timestamp + Duration.
func (e Event) End() time.Time {
	return e.Timestamp.Add(Seconds(e.Duration))
}

// Seconds converts a floating point second count to a time.Duration,
// rounding to the nearest nanosecond. Values beyond the Duration range,
// infinities included, saturate; NaN is zero.
func Seconds(s float64) time.Duration {
	ns := math.Round(s * float64(time.Second))
	switch {
	case math.IsNaN(ns):
		return 0
	case ns >= float64(math.MaxInt64):
		return math.MaxInt64
	case ns <= float64(math.MinInt64):
		return math.MinInt64
	}
	return time.Duration(ns)
}

// Storable bounds: event start and end are kept as Unix nanoseconds.
var (
	MinTimestamp = time.Unix(0, math.MinInt64).UTC()
	MaxTimestamp = time.Unix(0, math.MaxInt64).UTC()
)

// CheckRange rejects events whose start or end cannot be stored.
func CheckRange(e Event) error {
	if e.Timestamp.Before(MinTimestamp) || e.Timestamp.After(MaxTimestamp) {
		return fmt.Errorf("timestamp %s outside %s..%s",
			e.Timestamp.Format(time.RFC3339), MinTimestamp.Format(time.RFC3339), MaxTimestamp.Format(time.RFC3339))
	}
	if limit := MaxTimestamp.Sub(e.Timestamp).Seconds(); e.Duration >= limit {
		return fmt.Errorf("duration %gs ends after %s", e.Duration, MaxTimestamp.Format(time.RFC3339))
	}
	return nil
}
