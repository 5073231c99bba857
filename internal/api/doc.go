// Package api is the embedded HTTP service launched from the boundary.
//
// It exposes a compact subset of the aw-server REST API (/api/0/...) over a
// Store, serves the web UI assets when configured, and publishes boundary
// metrics on /metrics. Launch blocks until its context is cancelled or the
// listener fails.
package api
