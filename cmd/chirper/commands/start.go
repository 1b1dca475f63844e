package commands

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/headline-hq/chirper/internal/bot"
	"github.com/headline-hq/chirper/internal/scheduler"
)

// start: run the bot on its cron schedule until interrupted. Individual
// job failures are logged and retried on the next tick.
func startCmd() *cobra.Command {
	var schedule string

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Run the posting job on a cron schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if schedule == "" {
				schedule = cfg.Schedule
			}

			b, cleanup, err := bot.Build(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer func() { _ = cleanup() }()

			sched := scheduler.New(log)
			if err := sched.Schedule(schedule, b.Run); err != nil {
				return err
			}

			log.InfoObj("scheduler started", "scheduler_started", map[string]any{
				"schedule": schedule,
			})
			sched.Start()

			<-ctx.Done()
			log.InfoObj("shutting down", "scheduler_stopping", nil)
			sched.Stop()
			return nil
		},
	}

	cmd.Flags().StringVar(&schedule, "schedule", "", "cron spec override (default from config)")
	return cmd
}
