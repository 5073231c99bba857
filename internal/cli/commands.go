package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/awbridge/internal/boundary"
)

// NewGreetCommand creates the greet command.
func NewGreetCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "greet <name>",
		Short:         "Round-trip a greeting through the boundary",
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := opts.arg(args[0])
			defer opts.host.Release(name)

			return opts.call(cmd, "greeting", func(b *boundary.Bridge, host boundary.Host) boundary.Handle {
				return b.Greet(host, name)
			})
		},
	}
}

// NewServeCommand creates the serve command.
func NewServeCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the embedded HTTP service",
		Long: `Run the embedded aw-server HTTP service over the data directory.

The service listens on 127.0.0.1:5600 (5666 with --testing) unless
aw-server.yaml in the data directory overrides it.

Example:
  awctl serve --data-dir /tmp/aw --verbose`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(opts, cmd)
		},
	}
}

func serve(opts *RootOptions, cmd *cobra.Command) error {
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			opts.bridge.StopServer()
		case <-ctx.Done():
		}
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "Serving data directory %s. Press Ctrl-C to stop.\n", opts.bridge.DataDir())
	if err := opts.bridge.StartServer(ctx); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

// NewBucketsCommand creates the buckets command.
func NewBucketsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "buckets",
		Short:         "List buckets as a JSON array",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.call(cmd, "getBuckets", func(b *boundary.Bridge, host boundary.Host) boundary.Handle {
				return b.GetBuckets(host)
			})
		},
	}
}

// NewCreateBucketCommand creates the create-bucket command.
func NewCreateBucketCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "create-bucket <bucket-json>",
		Short: "Create a bucket from a JSON descriptor",
		Long: `Create a bucket from a JSON descriptor.

Example:
  awctl create-bucket '{"id":"aw-watcher-android_phone","type":"currentwindow"}'`,
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			desc := opts.arg(args[0])
			defer opts.host.Release(desc)

			return opts.call(cmd, "createBucket", func(b *boundary.Bridge, host boundary.Host) boundary.Handle {
				return b.CreateBucket(host, desc)
			})
		},
	}
}

// HeartbeatOptions holds flags for the heartbeat command.
type HeartbeatOptions struct {
	*RootOptions
	Pulsetime float64
}

// NewHeartbeatCommand creates the heartbeat command.
func NewHeartbeatCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HeartbeatOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "heartbeat <bucket-id> <event-json>",
		Short: "Send a heartbeat to a bucket",
		Long: `Send a heartbeat event, merging it into the latest event of the bucket
when the data matches and it arrives within --pulsetime seconds.

Example:
  awctl heartbeat b1 '{"timestamp":"2024-03-01T10:00:00Z","duration":0,"data":{"app":"Chrome"}}' --pulsetime 60`,
		Args:          cobra.ExactArgs(2),
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id := opts.arg(args[0])
			defer opts.host.Release(id)
			event := opts.arg(args[1])
			defer opts.host.Release(event)

			return opts.call(cmd, "heartbeat", func(b *boundary.Bridge, host boundary.Host) boundary.Handle {
				return b.Heartbeat(host, id, event, opts.Pulsetime)
			})
		},
	}

	cmd.Flags().Float64Var(&opts.Pulsetime, "pulsetime", 60, "merge window in seconds")

	return cmd
}

// EventsOptions holds flags for the events command.
type EventsOptions struct {
	*RootOptions
	Limit int32
}

// NewEventsCommand creates the events command.
func NewEventsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EventsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "events <bucket-id>",
		Short:         "List events of a bucket, newest first",
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id := opts.arg(args[0])
			defer opts.host.Release(id)

			return opts.call(cmd, "getEvents", func(b *boundary.Bridge, host boundary.Host) boundary.Handle {
				return b.GetEvents(host, id, opts.Limit)
			})
		},
	}

	cmd.Flags().Int32Var(&opts.Limit, "limit", 100, "maximum number of events (negative for all)")

	return cmd
}
