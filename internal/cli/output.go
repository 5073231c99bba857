package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Process exit codes.
const (
	ExitOK       = 0
	ExitRejected = 1 // error object, or a failure outside any entry point
	ExitUsage    = 2 // bad command line
	ExitNull     = 3 // entry point returned the null handle
)

// Outcome is what an entry point handed back to its host.
type Outcome string

const (
	OutcomeOK    Outcome = "ok"
	OutcomeError Outcome = "error"
	OutcomeNull  Outcome = "null"
)

// CallError is returned when an entry point did not succeed. It has already
// been printed by the time a command returns it.
type CallError struct {
	Op      string
	Outcome Outcome
	Message string
}

func (e *CallError) Error() string {
	return fmt.Sprintf("%s returned %s: %s", e.Op, e.Outcome, e.Message)
}

// UsageError reports a command line that could not be applied.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string { return e.Err.Error() }

func (e *UsageError) Unwrap() error { return e.Err }

// Printed reports whether err was already written to the command output.
func Printed(err error) bool {
	var callErr *CallError
	return errors.As(err, &callErr)
}

// ExitCode maps err onto a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var callErr *CallError
	if errors.As(err, &callErr) {
		if callErr.Outcome == OutcomeNull {
			return ExitNull
		}
		return ExitRejected
	}
	var usageErr *UsageError
	if errors.As(err, &usageErr) {
		return ExitUsage
	}
	return ExitRejected
}

// Envelope is the line written for one call in json mode. JSON results are
// embedded as-is; message results and failures travel in Message.
type Envelope struct {
	Op      string          `json:"op"`
	Outcome Outcome         `json:"outcome"`
	Result  json.RawMessage `json:"result,omitempty"`
	Message string          `json:"message,omitempty"`
}

// Printer renders entry point outcomes as plain text or JSON envelopes.
type Printer struct {
	JSON    bool
	Out     io.Writer
	Diag    io.Writer // verbose diagnostics, kept off Out so envelopes stay parseable
	Verbose bool
}

// OK prints a successful result.
func (p *Printer) OK(op, text string) error {
	if !p.JSON {
		_, err := fmt.Fprintln(p.Out, text)
		return err
	}
	env := Envelope{Op: op, Outcome: OutcomeOK}
	if json.Valid([]byte(text)) {
		env.Result = json.RawMessage(text)
	} else {
		env.Message = text
	}
	return p.encode(env)
}

// Fail prints a failed call and returns it as a *CallError.
func (p *Printer) Fail(op string, outcome Outcome, message string) error {
	callErr := &CallError{Op: op, Outcome: outcome, Message: message}
	if p.JSON {
		if err := p.encode(Envelope{Op: op, Outcome: outcome, Message: message}); err != nil {
			return err
		}
		return callErr
	}
	if outcome == OutcomeNull {
		fmt.Fprintf(p.Out, "Error: %s returned null (%s)\n", op, message)
	} else {
		fmt.Fprintf(p.Out, "Error: %s\n", message)
	}
	return callErr
}

// Debugf writes a diagnostic line when verbose output is on.
func (p *Printer) Debugf(format string, args ...any) {
	if !p.Verbose {
		return
	}
	w := p.Diag
	if w == nil {
		w = p.Out
	}
	fmt.Fprintf(w, format+"\n", args...)
}

func (p *Printer) encode(env Envelope) error {
	enc := json.NewEncoder(p.Out)
	enc.SetEscapeHTML(false)
	return enc.Encode(env)
}
