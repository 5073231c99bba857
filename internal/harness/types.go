package harness

// Outcome kinds recorded in the trace.
const (
	KindOK    = "ok"
	KindError = "error"
	KindNull  = "null"
)

// TraceEntry records one entry point call and its outcome.
type TraceEntry struct {
	Seq  int64    `json:"seq"`
	Call string   `json:"call"`
	Args []string `json:"args,omitempty"`
	Kind string   `json:"kind"`
	// Result is the returned text with volatile fields removed, or the
	// error message for error outcomes.
	Result string `json:"result,omitempty"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every expectation and assertion held.
	Pass bool `json:"pass"`

	Trace  []TraceEntry `json:"trace"`
	Errors []string     `json:"errors,omitempty"`

	// State maps bucket ids to their final event counts, for buckets named
	// by final_state assertions.
	State map[string]int64 `json:"state,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEntry{},
		Errors: []string{},
		State:  make(map[string]int64),
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
