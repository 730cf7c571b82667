package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the enhancer on the configured cron expression",
	Long: `Schedule keeps running and triggers one enhancement per tick of
scheduler.cronExpression in scheduler.timezone. A tick that arrives while the
previous run is still going is skipped. Stop with SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		application, err := newApplication(ctx)
		if err != nil {
			return err
		}
		defer application.Close()

		return application.Schedule(ctx)
	},
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
}
