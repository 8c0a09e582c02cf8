package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/opencodesearch/codesearch/pkg/codesearch"
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Index once, then reindex on every filesystem change until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd)
		},
	}
	return cmd
}

func runWatch(cmd *cobra.Command) error {
	engine, err := openEngine(cmd.Context())
	if err != nil {
		return err
	}
	defer engine.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := engine.Index(ctx, codesearch.IndexOptions{}); err != nil {
		return err
	}

	if err := engine.StartWatching(ctx, codesearch.IndexOptions{}); err != nil {
		return err
	}
	defer engine.StopWatching()

	fmt.Fprintln(cmd.OutOrStdout(), "watching for changes, press ctrl-c to stop")
	<-ctx.Done()
	return ctxErrOrNil(ctx)
}

func ctxErrOrNil(ctx context.Context) error {
	if err := ctx.Err(); err != nil && err != context.Canceled {
		return err
	}
	return nil
}
