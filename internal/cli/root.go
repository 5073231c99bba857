package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/awbridge/internal/boundary"
)

// Version is reported by the embedded service's /api/0/info.
var Version = "0.13.1-go"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	DataDir string
	Testing bool

	bridge *boundary.Bridge
	host   *boundary.MemHost
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the awctl CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "awctl",
		Short: "awctl - drive the ActivityWatch native bridge",
		Long: `Drive the ActivityWatch native bridge from a desktop shell.

Every command goes through the same entry points the Android app calls,
with strings passed through an in-process handle table.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return &UsageError{Err: fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)}
			}
			return opts.open(cmd.ErrOrStderr())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return opts.close()
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.DataDir, "data-dir", "", "data directory (default: platform data dir)")
	cmd.PersistentFlags().BoolVar(&opts.Testing, "testing", false, "use the testing database and port")

	// Add subcommands
	cmd.AddCommand(NewGreetCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewBucketsCommand(opts))
	cmd.AddCommand(NewCreateBucketCommand(opts))
	cmd.AddCommand(NewHeartbeatCommand(opts))
	cmd.AddCommand(NewEventsCommand(opts))

	return cmd
}

// open builds the bridge and applies --data-dir through the boundary.
func (o *RootOptions) open(logOut io.Writer) error {
	level := slog.LevelWarn
	if o.Verbose {
		level = slog.LevelDebug
	}

	o.host = boundary.NewMemHost()
	o.bridge = boundary.New(boundary.Options{
		Testing: o.Testing,
		Version: Version,
		LogHandler: func() slog.Handler {
			return slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: level})
		},
	})
	o.bridge.Initialize()

	if o.DataDir == "" {
		return nil
	}
	h, err := o.host.NewString(o.DataDir)
	if err != nil {
		return err
	}
	defer o.host.Release(h)
	if err := o.bridge.SetDataDir(o.host, h); err != nil {
		return &UsageError{Err: fmt.Errorf("invalid --data-dir: %w", err)}
	}
	return nil
}

func (o *RootOptions) close() error {
	if o.bridge == nil {
		return nil
	}
	return o.bridge.Resource().Invalidate()
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
