// Package boundary is the safety layer between a host runtime and the
// embedded event service.
//
// Every host-invokable operation is a method on Bridge. Each method runs
// inside exactly one Contain barrier so a panic never unwinds into host
// frames; text crosses the boundary only through ToNative and ToHost, which
// validate and never panic.
//
// Results follow a fixed convention the host relies on:
//
//   - NullHandle means the request was not understood (marshaling failed or
//     a fault was contained).
//   - An error object, {"error": "..."}, means the request was understood
//     but the operation failed.
//   - Anything else is the successful result.
//
// Go runtime fatal errors (concurrent map writes, out of memory, stack
// exhaustion) terminate the process and cannot be contained here.
package boundary
