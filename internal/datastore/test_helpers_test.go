package datastore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/awbridge/internal/models"
)

var t0 = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

// createTestDatastore opens a fresh datastore in a temp dir.
func createTestDatastore(t *testing.T) *Datastore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sqlite-testing.db")
	d, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

// createTestBucket creates a bucket with minimal required fields.
func createTestBucket(t *testing.T, d *Datastore, id string) {
	t.Helper()
	require.NoError(t, d.CreateBucket(context.Background(), models.Bucket{ID: id, Type: "test"}))
}

// testEvent builds an event offset seconds after t0.
func testEvent(offset, duration float64, data map[string]any) models.Event {
	return models.Event{
		Timestamp: t0.Add(models.Seconds(offset)),
		Duration:  duration,
		Data:      data,
	}
}
