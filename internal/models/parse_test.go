package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBucket_Minimal(t *testing.T) {
	b, err := ParseBucket([]byte(`{"id":"b1","type":"test"}`))
	require.NoError(t, err)

	assert.Equal(t, "b1", b.ID)
	assert.Equal(t, "test", b.Type)
	assert.Empty(t, b.Client)
	assert.NotNil(t, b.Data)
	assert.Nil(t, b.Created)
}

func TestParseBucket_Full(t *testing.T) {
	raw := `{
		"id": "aw-watcher-android-test",
		"name": "Android",
		"type": "os.lockscreen.unlocks",
		"client": "aw-android",
		"hostname": "pixel",
		"created": "2024-03-01T10:00:00Z",
		"data": {"k": "v"},
		"extra": true
	}`
	b, err := ParseBucket([]byte(raw))
	require.NoError(t, err)

	assert.Equal(t, "Android", b.Name)
	assert.Equal(t, "aw-android", b.Client)
	assert.Equal(t, "pixel", b.Hostname)
	require.NotNil(t, b.Created)
	assert.True(t, b.Created.Equal(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)))
	assert.Equal(t, "v", b.Data["k"])
}

func TestParseBucket_Rejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"malformed json", `{"id":"b1",`},
		{"not an object", `["b1"]`},
		{"missing id", `{"type":"test"}`},
		{"empty id", `{"id":"","type":"test"}`},
		{"missing type", `{"id":"b1"}`},
		{"wrong id type", `{"id":1,"type":"test"}`},
		{"bad created", `{"id":"b1","type":"test","created":"yesterday"}`},
		{"trailing data", `{"id":"b1","type":"test"} {"id":"b2"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBucket([]byte(tt.raw))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidPayload)
			assert.NotEmpty(t, err.Error())
		})
	}
}

func TestParseEvent(t *testing.T) {
	e, err := ParseEvent([]byte(`{"timestamp":"2024-03-01T10:00:00.5Z","duration":1.5,"data":{"app":"Chrome","n":3}}`))
	require.NoError(t, err)

	assert.Nil(t, e.ID)
	assert.True(t, e.Timestamp.Equal(time.Date(2024, 3, 1, 10, 0, 0, 500_000_000, time.UTC)))
	assert.Equal(t, 1.5, e.Duration)
	assert.Equal(t, "Chrome", e.Data["app"])
	assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 2, 0, time.UTC), e.End().UTC())
}

func TestParseEvent_Rejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"malformed json", `{"timestamp":`},
		{"missing timestamp", `{"duration":0,"data":{}}`},
		{"bad timestamp", `{"timestamp":"...","duration":0,"data":{}}`},
		{"negative duration", `{"timestamp":"2024-03-01T10:00:00Z","duration":-1,"data":{}}`},
		{"data not object", `{"timestamp":"2024-03-01T10:00:00Z","duration":0,"data":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseEvent([]byte(tt.raw))
			assert.ErrorIs(t, err, ErrInvalidPayload)
		})
	}
}

func TestParseEvent_OutOfRange(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"duration past storable end", `{"timestamp":"2024-03-01T10:00:00Z","duration":1e12,"data":{}}`, "duration"},
		{"timestamp after 2262", `{"timestamp":"2300-01-01T00:00:00Z","duration":0,"data":{}}`, "timestamp"},
		{"timestamp before 1677", `{"timestamp":"1600-01-01T00:00:00Z","duration":0,"data":{}}`, "timestamp"},
		{"end crosses the bound", `{"timestamp":"2262-04-11T00:00:00Z","duration":1e6,"data":{}}`, "duration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseEvent([]byte(tt.raw))
			require.ErrorIs(t, err, ErrInvalidPayload)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	e, err := ParseEvent([]byte(`{"timestamp":"2262-04-11T00:00:00Z","duration":3600,"data":{}}`))
	require.NoError(t, err)
	assert.True(t, e.End().Before(MaxTimestamp))
}

func TestParseEvents(t *testing.T) {
	events, err := ParseEvents([]byte(`[
		{"timestamp":"2024-03-01T10:00:00Z","duration":1,"data":{}},
		{"timestamp":"2024-03-01T10:00:01Z","duration":2,"data":{"a":1}}
	]`))
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, 2.0, events[1].Duration)

	_, err = ParseEvents([]byte(`[{"timestamp":"2024-03-01T10:00:00Z","data":{}},{"data":{}}]`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "events[1]")
}

func TestParseEvent_DataDefaultsToEmpty(t *testing.T) {
	e, err := ParseEvent([]byte(`{"timestamp":"2024-03-01T10:00:00Z"}`))
	require.NoError(t, err)
	assert.NotNil(t, e.Data)
	assert.Zero(t, e.Duration)
}
