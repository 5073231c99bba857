package api

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/roach88/awbridge/internal/models"
)

// Store is the storage engine surface the service needs.
type Store interface {
	GetBuckets(ctx context.Context) ([]models.Bucket, error)
	GetBucket(ctx context.Context, id string) (models.Bucket, error)
	CreateBucket(ctx context.Context, b models.Bucket) error
	DeleteBucket(ctx context.Context, id string) error
	InsertEvents(ctx context.Context, bucketID string, events []models.Event) ([]models.Event, error)
	Heartbeat(ctx context.Context, bucketID string, hb models.Event, pulsetime float64) (models.Event, error)
	GetEvents(ctx context.Context, bucketID string, start, end *time.Time, limit int64) ([]models.Event, error)
	GetEventCount(ctx context.Context, bucketID string, start, end *time.Time) (int64, error)
}

// ServerState is shared by all request handlers.
type ServerState struct {
	Store    Store
	DeviceID string
	Hostname string
	Version  string
	// Gatherer backs /metrics; nil disables the endpoint.
	Gatherer prometheus.Gatherer
}
