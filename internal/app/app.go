package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"ArticleEnhancer/internal/config"
	"ArticleEnhancer/internal/domain"
	"ArticleEnhancer/internal/extractor"
	"ArticleEnhancer/internal/infrastructure/articles"
	"ArticleEnhancer/internal/infrastructure/llm"
	"ArticleEnhancer/internal/infrastructure/scheduler"
	"ArticleEnhancer/internal/infrastructure/scraper"
	searchinfra "ArticleEnhancer/internal/infrastructure/search"
	"ArticleEnhancer/internal/infrastructure/storage"
	"ArticleEnhancer/internal/infrastructure/telegram"
	"ArticleEnhancer/internal/logging"
	"ArticleEnhancer/internal/search"
	"ArticleEnhancer/internal/usecase"
)

// ErrLedgerDisabled is returned by history reads when no ledger DSN is configured.
var ErrLedgerDisabled = errors.New("run ledger is not configured (set ledger.dsn or LEDGER_DSN)")

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	pipeline *usecase.Pipeline
	ledger   *storage.RunLedger
}

// New validates cfg and builds every adapter. Nothing touches the network
// except opening the optional ledger database.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	provider, err := newRegistry(cfg.Search).Resolve(cfg.Search.Provider)
	if err != nil {
		return nil, err
	}

	finder := searchinfra.NewFinder(
		&http.Client{Timeout: cfg.Search.Timeout.Duration},
		provider,
		searchinfra.FinderOptions{
			UserAgent:   cfg.Search.UserAgent,
			Qualifier:   cfg.Search.Qualifier,
			ResultCount: cfg.Search.ResultCount,
		},
		baseLogger.With("component", "finder", "provider", provider.Name()),
	)

	collector := scraper.NewCollector(nil, extractor.New(), scraper.CollectorOptions{
		UserAgent: cfg.ScraperUserAgent(),
		Timeout:   cfg.Scraper.Timeout.Duration,
		Delay:     cfg.Scraper.Delay.Duration,
	}, baseLogger.With("component", "collector"))

	synthesizer := usecase.NewSynthesizer(llm.NewChatGPTClient(cfg.LLM), usecase.SynthesizerOptions{
		SystemPrompt: cfg.LLM.SystemPrompt,
		Temperature:  &cfg.LLM.Temperature,
		MaxTokens:    cfg.LLM.MaxTokens,
	})

	store := articles.NewClient(cfg.Storage.APIURL, cfg.Storage.Timeout.Duration)

	application := &Application{cfg: cfg, logger: baseLogger}

	deps := usecase.PipelineDeps{
		Store:       store,
		Finder:      finder,
		Collector:   collector,
		Synthesizer: synthesizer,
		Publisher:   usecase.NewPublisher(store),
		Logger:      baseLogger,
	}

	if cfg.Ledger.Enabled() {
		ledger, err := OpenLedger(ctx, cfg.Ledger)
		if err != nil {
			return nil, err
		}
		application.ledger = ledger
		deps.Ledger = ledger
	}

	if cfg.Notifications.Telegram.Enabled() {
		deps.Notifier = telegram.NewNotifier(cfg.Notifications.Telegram.BotToken, cfg.Notifications.Telegram.ChatID)
	}

	application.pipeline = usecase.NewPipeline(deps)
	return application, nil
}

// Run performs a single enhancement attempt.
func (a *Application) Run(ctx context.Context) (domain.RunResult, error) {
	return a.pipeline.Run(ctx)
}

// Schedule runs the pipeline on the configured cron expression until ctx ends.
func (a *Application) Schedule(ctx context.Context) error {
	driver := scheduler.NewCronScheduler(
		a.cfg.Scheduler.CronExpression,
		a.cfg.Scheduler.Location(),
		a.logger.With("component", "cron"),
	)

	runner := usecase.NewScheduler(driver, a.pipeline, a.logger)
	if err := runner.Start(ctx); err != nil {
		return err
	}

	if next, err := driver.Next(time.Now()); err == nil {
		a.logger.Info("scheduler started", "cron", a.cfg.Scheduler.CronExpression, "next_run", next)
	}

	<-ctx.Done()
	return runner.Stop(context.Background())
}

// History lists the most recent ledger rows, newest first.
func (a *Application) History(ctx context.Context, limit int) ([]domain.RunRecord, error) {
	if a.ledger == nil {
		return nil, ErrLedgerDisabled
	}
	return a.ledger.Recent(ctx, limit)
}

// OpenLedger opens the run ledger on its own. Only the ledger settings are
// checked, so reading run history needs no API key or storage URL.
func OpenLedger(ctx context.Context, cfg config.LedgerConfig) (*storage.RunLedger, error) {
	if !cfg.Enabled() {
		return nil, ErrLedgerDisabled
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	ledger, err := storage.Open(ctx, cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open run ledger: %w", err)
	}
	return ledger, nil
}

// Close releases the ledger connection.
func (a *Application) Close() error {
	if a.ledger == nil {
		return nil
	}
	return a.ledger.Close()
}

func newRegistry(cfg config.SearchConfig) *search.Registry {
	registry := search.NewRegistry(
		searchinfra.NewGoogleProvider(""),
		searchinfra.NewDuckDuckGoProvider(""),
	)

	// A custom endpoint only applies to the selected provider.
	if endpoint := strings.TrimSpace(cfg.Endpoint); endpoint != "" {
		var custom search.Provider
		switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
		case "google":
			custom = searchinfra.NewGoogleProvider(endpoint)
		case "duckduckgo":
			custom = searchinfra.NewDuckDuckGoProvider(endpoint)
		}
		if custom != nil {
			registry.Register(custom)
		}
	}

	return registry
}
