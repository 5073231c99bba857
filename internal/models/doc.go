// Package models defines the bucket and event payloads that cross the
// boundary as JSON text.
//
// Payloads are decoded with encoding/json and then checked against an
// embedded CUE schema (schema.cue), so a malformed descriptor is rejected
// with a readable message before any storage is touched.
//
// Event data objects are compared through CanonicalData, a deterministic
// JSON rendering (sorted keys, NFC strings), which is what heartbeat merging
// uses to decide whether two events describe the same activity.
package models
