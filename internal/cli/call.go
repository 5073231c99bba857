package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/awbridge/internal/boundary"
)

// call runs one entry point, claims the returned handle and prints the
// outcome. op is the entry point name a host would see.
func (o *RootOptions) call(cmd *cobra.Command, op string, entry func(b *boundary.Bridge, host boundary.Host) boundary.Handle) error {
	p := o.printer(cmd)

	h := entry(o.bridge, o.host)
	if h == boundary.NullHandle {
		return p.Fail(op, OutcomeNull, "request not understood")
	}
	text, err := o.host.Take(h)
	if err != nil {
		return fmt.Errorf("%s: claim result: %w", op, err)
	}
	p.Debugf("%s: handle %d, %d bytes, %d handles live", op, h, len(text), o.host.Live())

	if msg, ok := boundary.ErrorMessage(text); ok {
		return p.Fail(op, OutcomeError, msg)
	}
	return p.OK(op, text)
}

// arg hands a command argument to the bridge as host text. The caller owns
// the handle.
func (o *RootOptions) arg(s string) boundary.Handle {
	h, _ := o.host.NewString(s)
	return h
}

func (o *RootOptions) printer(cmd *cobra.Command) *Printer {
	return &Printer{
		JSON:    o.Format == "json",
		Out:     cmd.OutOrStdout(),
		Diag:    cmd.ErrOrStderr(),
		Verbose: o.Verbose,
	}
}
