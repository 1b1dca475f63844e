package commands

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/headline-hq/chirper/internal/bot"
)

// run: execute one posting attempt and exit. Exit code 0 covers both a
// published post and a deliberate no-op (budget spent, no candidates).
func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Execute a single posting attempt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			b, cleanup, err := bot.Build(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer func() { _ = cleanup() }()

			return b.Run(ctx)
		},
	}
}
