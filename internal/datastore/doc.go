// Package datastore provides the SQLite-backed storage engine behind the
// boundary: buckets of timestamped events with heartbeat merging.
//
// # Data Model
//
//   - buckets: one row per bucket, keyed by its string id (column name)
//   - events: start/end as unix nanoseconds plus a JSON data object,
//     cascading on bucket delete
//
// Events are returned newest first (ORDER BY starttime DESC, id DESC).
// Timestamps are stored in UTC with nanosecond precision.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce bucket/event integrity
//
// A Datastore holds a single connection, so it is safe for concurrent use and
// read-modify-write sequences such as Heartbeat run inside one transaction.
package datastore
