// Package dirs owns the storage-root directory shared between the host and
// the native service.
//
// The host sets the directory once at startup (Android hands over its
// per-app files dir); the datastore accessor reads it when it first opens the
// database. Reads and writes go through a Cell, a mutex-guarded value with an
// explicit contract for writers that fail while holding the lock:
//
//   - the value written before the failure is kept
//   - the lock is released and the cell is marked poisoned
//   - the next Get logs the anomaly, clears the flag and returns the kept value
//
// Losing the directory would break every later storage access in the process,
// so a possibly stale but valid path is always preferred over an error.
package dirs
