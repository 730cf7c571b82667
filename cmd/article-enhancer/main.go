// Package main is the entry point for the article-enhancer CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"ArticleEnhancer/internal/app"
	"ArticleEnhancer/internal/config"
	"ArticleEnhancer/internal/logging"
)

// version is set at build time via ldflags.
var version = "dev"

// cfg and logger are populated by the root command before any subcommand runs.
var (
	cfg    config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "article-enhancer",
	Short: "Rewrite stored articles using related blog posts as style references",
	Long: `article-enhancer fetches the latest original article from the storage API,
finds up to two related blog posts, scrapes their text and asks a chat model to
restructure the article. The result is published back as a new, linked article.

Use "run" for a single attempt or "schedule" to run on a cron expression.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load .env: %w", err)
		}

		path, _ := cmd.Flags().GetString("config")
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		cfg = loaded
		logger = logging.New(cfg.Logging.Level)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "YAML config file (default: $ENHANCER_CONFIG)")
}

// newApplication builds the wired application or fails on invalid configuration.
func newApplication(ctx context.Context) (*app.Application, error) {
	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		return nil, err
	}
	return application, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
