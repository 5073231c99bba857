package datastore

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"time"

	"github.com/roach88/awbridge/internal/models"
)

// InsertEvents appends events to a bucket and returns them with ids set.
func (d *Datastore) InsertEvents(ctx context.Context, bucketID string, events []models.Event) ([]models.Event, error) {
	for _, e := range events {
		if err := models.CheckRange(e); err != nil {
			return nil, outOfRange(bucketID, err)
		}
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, internal("insert events: begin tx", err)
	}
	defer tx.Rollback() // No-op if committed

	row, err := bucketRow(ctx, tx, bucketID)
	if err != nil {
		return nil, err
	}

	inserted := make([]models.Event, 0, len(events))
	for _, e := range events {
		stored, err := insertEvent(ctx, tx, row, e)
		if err != nil {
			return nil, err
		}
		inserted = append(inserted, stored)
	}

	if err := tx.Commit(); err != nil {
		return nil, internal("insert events: commit", err)
	}
	return inserted, nil
}

// Heartbeat merges hb into the latest event of the bucket when it carries the
// same data and falls within pulsetime seconds of that event's end; otherwise
// hb is inserted as a new event. Returns the stored event.
func (d *Datastore) Heartbeat(ctx context.Context, bucketID string, hb models.Event, pulsetime float64) (models.Event, error) {
	if err := models.CheckRange(hb); err != nil {
		return models.Event{}, outOfRange(bucketID, err)
	}
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Event{}, internal("heartbeat: begin tx", err)
	}
	defer tx.Rollback() // No-op if committed

	row, err := bucketRow(ctx, tx, bucketID)
	if err != nil {
		return models.Event{}, err
	}

	var stored models.Event
	last, found, err := latestEvent(ctx, tx, row)
	if err != nil {
		return models.Event{}, err
	}

	merged, ok := models.Event{}, false
	if found {
		merged, ok = models.MergeHeartbeat(last, hb, pulsetime)
	}
	if ok {
		if _, err := tx.ExecContext(ctx, `UPDATE events SET endtime = ? WHERE id = ?`,
			toNanos(merged.End()), *merged.ID); err != nil {
			return models.Event{}, internal("heartbeat: update", err)
		}
		stored = merged
	} else {
		if stored, err = insertEvent(ctx, tx, row, hb); err != nil {
			return models.Event{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return models.Event{}, internal("heartbeat: commit", err)
	}
	return stored, nil
}

// GetEvents returns events of a bucket overlapping [start, end], newest
// first. A nil bound is open; limit < 0 means no limit. Returns an empty
// slice (not nil) for an empty bucket.
func (d *Datastore) GetEvents(ctx context.Context, bucketID string, start, end *time.Time, limit int64) ([]models.Event, error) {
	row, err := bucketRow(ctx, d.db, bucketID)
	if err != nil {
		return nil, err
	}
	if limit < 0 {
		limit = -1
	}

	lo, hi := bounds(start, end)
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, starttime, endtime, data
		FROM events
		WHERE bucketrow = ? AND endtime >= ? AND starttime <= ?
		ORDER BY starttime DESC, id DESC
		LIMIT ?
	`, row, lo, hi, limit)
	if err != nil {
		return nil, internal("query events", err)
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, internal("iterate events", err)
	}
	return events, nil
}

// GetEventCount counts events of a bucket overlapping [start, end].
func (d *Datastore) GetEventCount(ctx context.Context, bucketID string, start, end *time.Time) (int64, error) {
	row, err := bucketRow(ctx, d.db, bucketID)
	if err != nil {
		return 0, err
	}

	lo, hi := bounds(start, end)
	var n int64
	err = d.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM events
		WHERE bucketrow = ? AND endtime >= ? AND starttime <= ?
	`, row, lo, hi).Scan(&n)
	if err != nil {
		return 0, internal("count events", err)
	}
	return n, nil
}

func bounds(start, end *time.Time) (int64, int64) {
	lo, hi := int64(math.MinInt64), int64(math.MaxInt64)
	if start != nil {
		lo = toNanos(*start)
	}
	if end != nil {
		hi = toNanos(*end)
	}
	return lo, hi
}

func latestEvent(ctx context.Context, q querier, row int64) (models.Event, bool, error) {
	r := q.QueryRowContext(ctx, `
		SELECT id, starttime, endtime, data
		FROM events
		WHERE bucketrow = ?
		ORDER BY starttime DESC, id DESC
		LIMIT 1
	`, row)
	e, err := scanEvent(r)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Event{}, false, nil
	}
	if err != nil {
		return models.Event{}, false, err
	}
	return e, true, nil
}

func insertEvent(ctx context.Context, q querier, row int64, e models.Event) (models.Event, error) {
	data, err := marshalData(e.Data)
	if err != nil {
		return models.Event{}, internal("insert event", err)
	}

	res, err := q.ExecContext(ctx, `
		INSERT INTO events (bucketrow, starttime, endtime, data)
		VALUES (?, ?, ?, ?)
	`, row, toNanos(e.Timestamp), toNanos(e.End()), data)
	if err != nil {
		return models.Event{}, internal("insert event", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Event{}, internal("insert event", err)
	}

	stored := e
	stored.ID = &id
	stored.Timestamp = e.Timestamp.UTC()
	if stored.Data == nil {
		stored.Data = map[string]any{}
	}
	return stored, nil
}

func scanEvent(s rowScanner) (models.Event, error) {
	var (
		id         int64
		start, end int64
		data       string
	)
	if err := s.Scan(&id, &start, &end, &data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Event{}, err
		}
		return models.Event{}, internal("scan event", err)
	}

	payload, err := unmarshalData(data)
	if err != nil {
		return models.Event{}, internal("scan event", err)
	}
	return models.Event{
		ID:        &id,
		Timestamp: fromNanos(start),
		Duration:  time.Duration(end - start).Seconds(),
		Data:      payload,
	}, nil
}
