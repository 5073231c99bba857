package harness

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/roach88/awbridge/internal/boundary"
)

// nullArg is how a null handle argument appears in the trace.
const nullArg = "<null>"

// volatileKeys are stripped from JSON results before they enter the trace.
var volatileKeys = map[string]bool{"created": true}

// Harness executes one scenario against a fresh Bridge.
type Harness struct {
	root   string
	bridge *boundary.Bridge
	host   *boundary.MemHost
	seq    int64
}

// Run executes scenario with root as the fallback data directory.
// The returned error is reserved for failures of the harness itself;
// scenario failures are reported in Result.Errors.
func Run(scenario *Scenario, root string) (*Result, error) {
	h := &Harness{
		root: root,
		host: boundary.NewMemHost(),
		bridge: boundary.New(boundary.Options{
			DataDir:    root,
			Testing:    scenario.Testing,
			Version:    "harness",
			LogHandler: func() slog.Handler { return slog.DiscardHandler },
		}),
	}
	defer func() { _ = h.bridge.Resource().Invalidate() }()

	result := NewResult()
	for i, step := range scenario.Flow {
		entry, raw := h.execute(step)
		result.Trace = append(result.Trace, entry)
		if step.Expect == nil {
			continue
		}
		if msg := checkExpect(entry, raw, step.Expect); msg != "" {
			result.AddError(fmt.Sprintf("flow[%d] %s: %s", i, step.Call, msg))
		}
	}

	errs, err := h.evaluateAssertions(result, scenario.Assertions)
	if err != nil {
		return nil, err
	}
	for _, msg := range errs {
		result.AddError(msg)
	}

	if leaked := h.host.Live(); leaked != 0 {
		result.AddError(fmt.Sprintf("%d host strings left unreleased", leaked))
	}
	return result, nil
}

// execute performs one call. It returns the trace entry and the raw,
// unredacted result text.
func (h *Harness) execute(step FlowStep) (TraceEntry, string) {
	h.seq++
	entry := TraceEntry{Seq: h.seq, Call: step.Call}

	handles := make([]boundary.Handle, len(step.Args))
	for i, arg := range step.Args {
		if arg == nil {
			entry.Args = append(entry.Args, nullArg)
			continue
		}
		s := *arg
		entry.Args = append(entry.Args, s)
		if step.Call == "setDataDir" && s != "" && !filepath.IsAbs(s) {
			s = filepath.Join(h.root, s)
		}
		handles[i], _ = h.host.NewString(s)
	}
	defer func() {
		for _, hd := range handles {
			if hd != boundary.NullHandle {
				_ = h.host.Release(hd)
			}
		}
	}()

	b, host := h.bridge, h.host
	switch step.Call {
	case "initialize":
		b.Initialize()
		entry.Kind = KindOK
		return entry, ""
	case "stopServer":
		b.StopServer()
		entry.Kind = KindOK
		return entry, ""
	case "setDataDir":
		if err := b.SetDataDir(host, handles[0]); err != nil {
			entry.Kind, entry.Result = KindError, err.Error()
			return entry, entry.Result
		}
		entry.Kind = KindOK
		return entry, ""
	}

	var out boundary.Handle
	switch step.Call {
	case "greeting":
		out = b.Greet(host, handles[0])
	case "getBuckets":
		out = b.GetBuckets(host)
	case "createBucket":
		out = b.CreateBucket(host, handles[0])
	case "heartbeat":
		out = b.Heartbeat(host, handles[0], handles[1], step.Pulsetime)
	case "getEvents":
		out = b.GetEvents(host, handles[0], step.Limit)
	}
	return h.outcome(entry, out)
}

func (h *Harness) outcome(entry TraceEntry, out boundary.Handle) (TraceEntry, string) {
	if out == boundary.NullHandle {
		entry.Kind = KindNull
		return entry, ""
	}
	text, err := h.host.Take(out)
	if err != nil {
		entry.Kind, entry.Result = KindNull, err.Error()
		return entry, ""
	}
	if msg, ok := boundary.ErrorMessage(text); ok {
		entry.Kind, entry.Result = KindError, msg
		return entry, msg
	}
	entry.Kind, entry.Result = KindOK, redact(text)
	return entry, text
}

// redact drops volatile fields from JSON results. Non-JSON text is returned
// unchanged.
func redact(text string) string {
	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return text
	}
	out, err := json.Marshal(stripVolatile(v))
	if err != nil {
		return text
	}
	return string(out)
}

func stripVolatile(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, inner := range val {
			if volatileKeys[k] {
				delete(val, k)
				continue
			}
			val[k] = stripVolatile(inner)
		}
	case []any:
		for i, inner := range val {
			val[i] = stripVolatile(inner)
		}
	}
	return v
}
