package main

import (
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of article-enhancer",
	// Skips config loading from the root command.
	PersistentPreRun: func(cmd *cobra.Command, args []string) {},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("article-enhancer %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
