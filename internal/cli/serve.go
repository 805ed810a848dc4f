package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"procdexeh/reminders/internal/mcp"
	"procdexeh/reminders/internal/reminders"
	"procdexeh/reminders/internal/tools"
)

func (a *app) newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the reminder tools over MCP on stdin/stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Authorize(ctx); err != nil {
				a.logger.Error("reminders access not granted", "error", err)
				return err
			}

			registry := tools.NewRegistry(reminders.Guard(store), a.logger)
			srv := mcp.NewServerWithIO(registry,
				mcp.EntityInfo{Name: "reminders", Version: a.version},
				cmd.InOrStdin(), cmd.OutOrStdout(), a.logger)

			return runUntilDone(ctx, shutdownGrace, func() error { return srv.Run(ctx) }, func() {
				a.logger.Info("signal received, shutting down")
			})
		},
	}
}

// shutdownGrace bounds how long a signalled server may take to finish the
// request in hand before the store is closed under it.
const shutdownGrace = 2 * time.Second

// runUntilDone runs fn and returns its result. Reading stdin blocks, so a
// cancelled ctx cannot stop fn directly; once ctx ends, fn gets up to grace
// to return before runUntilDone gives up on it.
func runUntilDone(ctx context.Context, grace time.Duration, fn func() error, onCancel func()) error {
	errc := make(chan error, 1)
	go func() { errc <- fn() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		onCancel()
	}

	timer := time.NewTimer(grace)
	defer timer.Stop()
	select {
	case err := <-errc:
		return err
	case <-timer.C:
		return nil
	}
}
