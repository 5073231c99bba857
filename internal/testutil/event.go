package testutil

import (
	"encoding/json"
	"time"
)

// EventJSON renders an event the way watchers send it over the boundary.
// A nil data map is rendered as {}.
func EventJSON(ts time.Time, duration float64, data map[string]any) string {
	if data == nil {
		data = map[string]any{}
	}
	b, err := json.Marshal(struct {
		Timestamp time.Time      `json:"timestamp"`
		Duration  float64        `json:"duration"`
		Data      map[string]any `json:"data"`
	}{ts.UTC(), duration, data})
	if err != nil {
		panic(err)
	}
	return string(b)
}

// BucketJSON renders a minimal bucket descriptor.
func BucketJSON(id, typ string) string {
	b, _ := json.Marshal(map[string]string{"id": id, "type": typ})
	return string(b)
}
