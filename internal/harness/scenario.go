package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is a scripted sequence of entry point calls.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`

	// Testing selects the testing database file.
	Testing bool `yaml:"testing"`

	Flow       []FlowStep  `yaml:"flow"`
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// FlowStep invokes one entry point.
type FlowStep struct {
	Call string `yaml:"call"`

	// Args are the text arguments in entry point order. A nil entry is
	// passed as the null handle.
	Args []*string `yaml:"args,omitempty"`

	Pulsetime float64 `yaml:"pulsetime,omitempty"`
	Limit     int32   `yaml:"limit,omitempty"`

	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause checks the outcome of a single step.
type ExpectClause struct {
	// Kind is one of ok, error, null.
	Kind string `yaml:"kind"`

	// Text must equal the result exactly.
	Text string `yaml:"text,omitempty"`

	// Contains must be a substring of the result or error message.
	Contains string `yaml:"contains,omitempty"`

	// Len is the expected length of a JSON array result.
	Len *int `yaml:"len,omitempty"`
}

// Assertion validates the trace or the final stored state.
type Assertion struct {
	Type string `yaml:"type"`

	Call  string   `yaml:"call,omitempty"`
	Kind  string   `yaml:"kind,omitempty"`
	Count int      `yaml:"count,omitempty"`
	Calls []string `yaml:"calls,omitempty"`

	Bucket string `yaml:"bucket,omitempty"`
	Events *int64 `yaml:"events,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceCount = "trace_count"
	AssertTraceOrder = "trace_order"
	AssertFinalState = "final_state"
)

// arity lists the text argument count of every scriptable entry point.
// startServer is not scriptable because it blocks.
var arity = map[string]int{
	"initialize":   0,
	"greeting":     1,
	"setDataDir":   1,
	"getBuckets":   0,
	"createBucket": 1,
	"heartbeat":    2,
	"getEvents":    1,
	"stopServer":   0,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}

	for i, step := range s.Flow {
		n, ok := arity[step.Call]
		if !ok {
			return fmt.Errorf("flow[%d]: unknown call %q", i, step.Call)
		}
		if len(step.Args) != n {
			return fmt.Errorf("flow[%d]: %s takes %d args, got %d", i, step.Call, n, len(step.Args))
		}
		if step.Expect != nil {
			if err := validateKind(step.Expect.Kind); err != nil {
				return fmt.Errorf("flow[%d].expect: %w", i, err)
			}
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(a); err != nil {
			return fmt.Errorf("assertions[%d]: %w", i, err)
		}
	}
	return nil
}

func validateKind(kind string) error {
	switch kind {
	case KindOK, KindError, KindNull:
		return nil
	}
	return fmt.Errorf("kind must be one of ok, error, null (got %q)", kind)
}

func validateAssertion(a Assertion) error {
	switch a.Type {
	case AssertTraceCount:
		if a.Call == "" {
			return fmt.Errorf("trace_count requires call")
		}
		if a.Kind != "" {
			return validateKind(a.Kind)
		}
	case AssertTraceOrder:
		if len(a.Calls) < 2 {
			return fmt.Errorf("trace_order requires at least two calls")
		}
	case AssertFinalState:
		if a.Bucket == "" || a.Events == nil {
			return fmt.Errorf("final_state requires bucket and events")
		}
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}
