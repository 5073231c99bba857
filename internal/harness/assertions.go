package harness

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// checkExpect returns a failure description, or "" when entry matches.
func checkExpect(entry TraceEntry, raw string, expect *ExpectClause) string {
	if entry.Kind != expect.Kind {
		return fmt.Sprintf("expected kind %s, got %s (%s)", expect.Kind, entry.Kind, raw)
	}
	if expect.Text != "" && raw != expect.Text {
		return fmt.Sprintf("expected text %q, got %q", expect.Text, raw)
	}
	if expect.Contains != "" && !strings.Contains(raw, expect.Contains) {
		return fmt.Sprintf("expected %q to contain %q", raw, expect.Contains)
	}
	if expect.Len != nil {
		var arr []json.RawMessage
		if err := json.Unmarshal([]byte(raw), &arr); err != nil {
			return fmt.Sprintf("expected JSON array, got %q", raw)
		}
		if len(arr) != *expect.Len {
			return fmt.Sprintf("expected %d elements, got %d", *expect.Len, len(arr))
		}
	}
	return ""
}

func assertTraceCount(trace []TraceEntry, a Assertion) error {
	n := 0
	for _, e := range trace {
		if e.Call == a.Call && (a.Kind == "" || e.Kind == a.Kind) {
			n++
		}
	}
	if n != a.Count {
		return fmt.Errorf("trace_count: %s (kind %q) appeared %d times, expected %d", a.Call, a.Kind, n, a.Count)
	}
	return nil
}

func assertTraceOrder(trace []TraceEntry, a Assertion) error {
	next := 0
	for _, e := range trace {
		if next < len(a.Calls) && e.Call == a.Calls[next] {
			next++
		}
	}
	if next != len(a.Calls) {
		return fmt.Errorf("trace_order: %s not found after %v", a.Calls[next], a.Calls[:next])
	}
	return nil
}

func (h *Harness) assertFinalState(result *Result, a Assertion) (string, error) {
	engine, err := h.bridge.Resource().Get()
	if err != nil {
		return "", fmt.Errorf("final_state: %w", err)
	}
	n, err := engine.GetEventCount(context.Background(), a.Bucket, nil, nil)
	if err != nil {
		return fmt.Sprintf("final_state: bucket %s: %v", a.Bucket, err), nil
	}
	result.State[a.Bucket] = n
	if n != *a.Events {
		return fmt.Sprintf("final_state: bucket %s holds %d events, expected %d", a.Bucket, n, *a.Events), nil
	}
	return "", nil
}

// evaluateAssertions returns assertion failures. The error is non-nil only
// when stored state could not be read at all.
func (h *Harness) evaluateAssertions(result *Result, assertions []Assertion) ([]string, error) {
	var failures []string
	for _, a := range assertions {
		switch a.Type {
		case AssertTraceCount:
			if err := assertTraceCount(result.Trace, a); err != nil {
				failures = append(failures, err.Error())
			}
		case AssertTraceOrder:
			if err := assertTraceOrder(result.Trace, a); err != nil {
				failures = append(failures, err.Error())
			}
		case AssertFinalState:
			msg, err := h.assertFinalState(result, a)
			if err != nil {
				return nil, err
			}
			if msg != "" {
				failures = append(failures, msg)
			}
		}
	}
	return failures, nil
}
