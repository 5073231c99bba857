package datastore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/roach88/awbridge/internal/models"
)

const selectBuckets = `
	SELECT b.name, b.type, b.client, b.hostname, b.created, b.display_name, b.data,
		(SELECT MIN(e.starttime) FROM events e WHERE e.bucketrow = b.id),
		(SELECT MAX(e.endtime) FROM events e WHERE e.bucketrow = b.id)
	FROM buckets b
`

// GetBuckets returns all buckets ordered by id, with metadata computed from
// their events. Returns an empty slice (not nil) when there are none.
func (d *Datastore) GetBuckets(ctx context.Context) ([]models.Bucket, error) {
	rows, err := d.db.QueryContext(ctx, selectBuckets+` ORDER BY b.name COLLATE BINARY ASC`)
	if err != nil {
		return nil, internal("query buckets", err)
	}
	defer rows.Close()

	buckets := []models.Bucket{}
	for rows.Next() {
		b, err := scanBucket(rows)
		if err != nil {
			return nil, err
		}
		buckets = append(buckets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, internal("iterate buckets", err)
	}
	return buckets, nil
}

// GetBucket returns a single bucket.
func (d *Datastore) GetBucket(ctx context.Context, id string) (models.Bucket, error) {
	row := d.db.QueryRowContext(ctx, selectBuckets+` WHERE b.name = ?`, id)
	b, err := scanBucket(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Bucket{}, noSuchBucket(id)
	}
	return b, err
}

// CreateBucket inserts a new bucket. Created defaults to now.
func (d *Datastore) CreateBucket(ctx context.Context, b models.Bucket) error {
	created := time.Now()
	if b.Created != nil {
		created = *b.Created
	}
	data, err := marshalData(b.Data)
	if err != nil {
		return internal("create bucket", err)
	}

	_, err = d.db.ExecContext(ctx, `
		INSERT INTO buckets (name, type, client, hostname, created, display_name, data)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, b.ID, b.Type, b.Client, b.Hostname, toNanos(created), b.Name, data)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return &Error{Code: CodeBucketExists, BucketID: b.ID}
		}
		return internal("create bucket", err)
	}
	return nil
}

// DeleteBucket removes a bucket and all of its events.
func (d *Datastore) DeleteBucket(ctx context.Context, id string) error {
	res, err := d.db.ExecContext(ctx, `DELETE FROM buckets WHERE name = ?`, id)
	if err != nil {
		return internal("delete bucket", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return internal("delete bucket", err)
	}
	if n == 0 {
		return noSuchBucket(id)
	}
	return nil
}

// bucketRow resolves a bucket id to its row id.
func bucketRow(ctx context.Context, q querier, id string) (int64, error) {
	var row int64
	err := q.QueryRowContext(ctx, `SELECT id FROM buckets WHERE name = ?`, id).Scan(&row)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, noSuchBucket(id)
	}
	if err != nil {
		return 0, internal("lookup bucket", err)
	}
	return row, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBucket(s rowScanner) (models.Bucket, error) {
	var (
		b          models.Bucket
		created    int64
		data       string
		start, end sql.NullInt64
	)
	if err := s.Scan(&b.ID, &b.Type, &b.Client, &b.Hostname, &created, &b.Name, &data, &start, &end); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Bucket{}, err
		}
		return models.Bucket{}, internal("scan bucket", err)
	}

	createdAt := fromNanos(created)
	b.Created = &createdAt

	var err error
	if b.Data, err = unmarshalData(data); err != nil {
		return models.Bucket{}, internal("scan bucket", err)
	}
	if start.Valid {
		t := fromNanos(start.Int64)
		b.Metadata.Start = &t
	}
	if end.Valid {
		t := fromNanos(end.Int64)
		b.Metadata.End = &t
	}
	return b, nil
}
