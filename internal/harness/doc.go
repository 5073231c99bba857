// Package harness runs scripted conformance scenarios against the boundary
// entry points.
//
// A scenario drives a fresh Bridge through a sequence of entry point calls,
// exactly as a host would, records every outcome in a trace and checks
// expectations and assertions against it.
//
// # Scenario Format
//
//	name: heartbeat_missing_bucket
//	description: "A heartbeat on an unknown bucket is rejected, not faulted"
//	testing: true
//	flow:
//	  - call: setDataDir
//	    args: ["aw-test"]
//	  - call: heartbeat
//	    args: ["missing", '{"timestamp":"2024-03-01T10:00:00Z","duration":0,"data":{}}']
//	    pulsetime: 5
//	    expect:
//	      kind: error
//	      contains: NO_SUCH_BUCKET
//	assertions:
//	  - type: trace_count
//	    call: heartbeat
//	    kind: error
//	    count: 1
//
// A null arg (~ in YAML) is passed as the null handle. Relative setDataDir
// paths resolve under the directory the scenario runs in.
//
// # Outcome Kinds
//
//   - ok: a result (or a void call that completed)
//   - error: an error object, or a void call that reported an error
//   - null: the null handle
//
// # Assertion Types
//
//   - trace_count: a call with the given outcome kind appears exactly N times
//   - trace_order: calls appear in the given relative order
//   - final_state: a bucket holds exactly N events at the end of the run
package harness
