package main

import (
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"ArticleEnhancer/internal/app"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent runs from the run ledger",
	Long: `History prints the most recent runs recorded in the run ledger, newest
first. Only the ledger settings (ledger.dsn or LEDGER_DSN) are required.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		ledger, err := app.OpenLedger(cmd.Context(), cfg.Ledger)
		if err != nil {
			logger.Error("open run ledger failed", "error", err)
			return err
		}
		defer ledger.Close()

		records, err := ledger.Recent(cmd.Context(), limit)
		if err != nil {
			return err
		}

		t := table.NewWriter()
		t.SetOutputMirror(cmd.OutOrStdout())
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Started", "Run", "Article", "State", "Refs", "Enhanced", "Reason"})
		for _, r := range records {
			t.AppendRow(table.Row{
				r.StartedAt.Format(time.RFC3339),
				r.RunID,
				r.ArticleID.String(),
				string(r.State),
				r.ReferenceCount,
				r.EnhancedArticleID.String(),
				r.Reason,
			})
		}
		t.Render()
		return nil
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum number of runs to show")

	rootCmd.AddCommand(historyCmd)
}
