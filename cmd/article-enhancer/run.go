package main

import (
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Enhance the latest original article once",
	Long: `Run performs one enhancement attempt. It exits zero when the article was
published or the run was skipped (no article, no usable references) and
non-zero when synthesis or publishing failed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := newApplication(cmd.Context())
		if err != nil {
			return err
		}
		defer application.Close()

		result, err := application.Run(cmd.Context())
		if err != nil {
			return err
		}

		cmd.Printf("run %s finished: %s", result.RunID, result.State)
		if result.Reason != "" {
			cmd.Printf(" (%s)", result.Reason)
		}
		if result.Enhanced != nil {
			cmd.Printf(", published article %s", result.Enhanced.ID)
		}
		cmd.Println()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
