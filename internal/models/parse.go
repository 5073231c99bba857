package models

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cuejson "cuelang.org/go/encoding/json"
)

//go:embed schema.cue
var schemaCUE string

// ErrInvalidPayload is wrapped by every parse failure.
var ErrInvalidPayload = errors.New("invalid payload")

// validator holds the compiled schema. CUE values are not safe for
// concurrent evaluation, so checks are serialized.
type validator struct {
	mu     sync.Mutex
	ctx    *cue.Context
	schema cue.Value
}

var loadValidator = sync.OnceValues(func() (*validator, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &validator{ctx: ctx, schema: schema}, nil
})

// check unifies raw JSON with the named definition and requires a concrete
// result.
func (v *validator) check(def string, raw []byte) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	expr, err := cuejson.Extract(def, raw)
	if err != nil {
		return err
	}
	value := v.ctx.BuildExpr(expr)
	if err := value.Err(); err != nil {
		return err
	}

	unified := v.schema.LookupPath(cue.ParsePath(def)).Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return firstCUEError(err)
	}
	return nil
}

// firstCUEError trims a CUE error list down to its first entry.
func firstCUEError(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	return errs[0]
}

// ParseBucket decodes and validates a bucket descriptor.
func ParseBucket(raw []byte) (Bucket, error) {
	var b Bucket
	if err := decode(raw, &b); err != nil {
		return Bucket{}, fmt.Errorf("%w: bucket: %v", ErrInvalidPayload, err)
	}
	if err := validate("#Bucket", raw); err != nil {
		return Bucket{}, fmt.Errorf("%w: bucket: %v", ErrInvalidPayload, err)
	}
	if b.Data == nil {
		b.Data = map[string]any{}
	}
	b.Metadata = BucketMetadata{}
	return b, nil
}

// ParseEvent decodes and validates a single event.
func ParseEvent(raw []byte) (Event, error) {
	var e Event
	if err := decode(raw, &e); err != nil {
		return Event{}, fmt.Errorf("%w: event: %v", ErrInvalidPayload, err)
	}
	if err := validate("#Event", raw); err != nil {
		return Event{}, fmt.Errorf("%w: event: %v", ErrInvalidPayload, err)
	}
	if err := CheckRange(e); err != nil {
		return Event{}, fmt.Errorf("%w: event: %v", ErrInvalidPayload, err)
	}
	if e.Data == nil {
		e.Data = map[string]any{}
	}
	return e, nil
}

// ParseEvents decodes and validates a JSON array of events.
func ParseEvents(raw []byte) ([]Event, error) {
	var items []json.RawMessage
	if err := decode(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: events: %v", ErrInvalidPayload, err)
	}
	events := make([]Event, 0, len(items))
	for i, item := range items {
		e, err := ParseEvent(item)
		if err != nil {
			return nil, fmt.Errorf("events[%d]: %w", i, err)
		}
		events = append(events, e)
	}
	return events, nil
}

// decode unmarshals a single JSON value, keeping numbers as json.Number so
// integer payload values survive storage unchanged.
func decode(raw []byte, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after JSON value")
	}
	return nil
}

func validate(def string, raw []byte) error {
	v, err := loadValidator()
	if err != nil {
		return err
	}
	return v.check(def, raw)
}
