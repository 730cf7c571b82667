package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "UTC"
	// DefaultUserAgent is a browser-like identity; some sites refuse unidentified clients.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

	configPathEnv      = "ENHANCER_CONFIG"
	storageAPIURLEnv   = "STORAGE_API_URL"
	laravelAPIURLEnv   = "LARAVEL_API_URL"
	openAIAPIKeyEnv    = "OPENAI_API_KEY"
	openAIModelEnv     = "OPENAI_MODEL"
	searchUserAgentEnv = "SEARCH_USER_AGENT"
	searchProviderEnv  = "SEARCH_PROVIDER"
	ledgerDriverEnv    = "LEDGER_DRIVER"
	ledgerDSNEnv       = "LEDGER_DSN"
	telegramTokenEnv   = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv  = "TELEGRAM_CHAT_ID"
	logLevelEnv        = "LOG_LEVEL"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Storage       StorageConfig      `yaml:"storage"`
	LLM           LLMConfig          `yaml:"llm"`
	Search        SearchConfig       `yaml:"search"`
	Scraper       ScraperConfig      `yaml:"scraper"`
	Ledger        LedgerConfig       `yaml:"ledger"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Notifications NotificationConfig `yaml:"notifications"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// StorageConfig points at the article storage API.
type StorageConfig struct {
	APIURL  string   `yaml:"apiUrl"`
	Timeout Duration `yaml:"timeout"`
}

// LLMConfig defines how to contact the chat completion API.
type LLMConfig struct {
	Endpoint     string   `yaml:"endpoint"`
	Model        string   `yaml:"model"`
	APIKey       string   `yaml:"apiKey"`
	SystemPrompt string   `yaml:"systemPrompt"`
	Temperature  float64  `yaml:"temperature"`
	MaxTokens    int      `yaml:"maxTokens"`
	Timeout      Duration `yaml:"timeout"`
}

// SearchConfig selects and tunes the search results provider.
type SearchConfig struct {
	Provider    string   `yaml:"provider"`
	Endpoint    string   `yaml:"endpoint"`
	UserAgent   string   `yaml:"userAgent"`
	Qualifier   string   `yaml:"qualifier"`
	ResultCount int      `yaml:"resultCount"`
	Timeout     Duration `yaml:"timeout"`
}

// ScraperConfig tunes reference page fetches.
type ScraperConfig struct {
	// UserAgent defaults to the search user agent when empty.
	UserAgent string   `yaml:"userAgent"`
	Timeout   Duration `yaml:"timeout"`
	Delay     Duration `yaml:"delay"`
}

// LedgerConfig describes the optional run ledger database. Empty DSN disables it.
type LedgerConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// Enabled reports whether runs should be recorded.
func (l LedgerConfig) Enabled() bool {
	return strings.TrimSpace(l.DSN) != ""
}

// Validate checks the driver of an enabled ledger; a disabled ledger is valid.
func (l LedgerConfig) Validate() error {
	if !l.Enabled() {
		return nil
	}
	switch l.Driver {
	case "sqlite", "postgres":
		return nil
	default:
		return fmt.Errorf("ledger.driver %q is not supported (sqlite, postgres)", l.Driver)
	}
}

// SchedulerConfig defines when the enhancer should run.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// Enabled reports whether both token and chat are present.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// Duration reads Go duration strings ("1.5s", "10s") from YAML.
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses a duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return fmt.Errorf("duration: %w", err)
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("duration %q: %w", raw, err)
	}
	d.Duration = parsed
	return nil
}

// MarshalYAML writes the duration back as a string.
func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}

// Load reads YAML configuration over the defaults and applies environment
// overrides. An empty path falls back to $ENHANCER_CONFIG; no file at all is fine.
func Load(path string) (Config, error) {
	cfg := defaultConfig()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		// Keys absent from the file keep their default values.
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	return cfg, nil
}

// ScraperUserAgent is the identity sent to reference sites.
func (c Config) ScraperUserAgent() string {
	if c.Scraper.UserAgent != "" {
		return c.Scraper.UserAgent
	}
	return c.Search.UserAgent
}

// Validate fails fast on settings the pipeline cannot run without.
func (c Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Storage.APIURL) == "" {
		errs = append(errs, errors.New("storage.apiUrl is required"))
	} else if u, err := url.Parse(c.Storage.APIURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("storage.apiUrl %q is not an absolute URL", c.Storage.APIURL))
	}

	if strings.TrimSpace(c.LLM.APIKey) == "" {
		errs = append(errs, fmt.Errorf("llm.apiKey is required (set %s)", openAIAPIKeyEnv))
	}
	if c.LLM.Endpoint == "" || c.LLM.Model == "" {
		errs = append(errs, errors.New("llm.endpoint and llm.model are required"))
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errs = append(errs, fmt.Errorf("llm.temperature %.2f out of range [0, 2]", c.LLM.Temperature))
	}
	if c.LLM.MaxTokens <= 0 {
		errs = append(errs, errors.New("llm.maxTokens must be positive"))
	}

	if strings.TrimSpace(c.Search.UserAgent) == "" {
		errs = append(errs, errors.New("search.userAgent is required"))
	}
	if strings.TrimSpace(c.Search.Provider) == "" {
		errs = append(errs, errors.New("search.provider is required"))
	}

	if err := c.Ledger.Validate(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(laravelAPIURLEnv); v != "" {
		c.Storage.APIURL = v
	}
	if v := os.Getenv(storageAPIURLEnv); v != "" {
		c.Storage.APIURL = v
	}

	if v := os.Getenv(openAIAPIKeyEnv); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv(openAIModelEnv); v != "" {
		c.LLM.Model = v
	}

	if v := os.Getenv(searchUserAgentEnv); v != "" {
		c.Search.UserAgent = v
	}
	if v := os.Getenv(searchProviderEnv); v != "" {
		c.Search.Provider = v
	}

	if v := os.Getenv(ledgerDriverEnv); v != "" {
		c.Ledger.Driver = v
	}
	if v := os.Getenv(ledgerDSNEnv); v != "" {
		c.Ledger.DSN = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Storage: StorageConfig{
			APIURL:  "http://localhost:8000/api",
			Timeout: Duration{15 * time.Second},
		},
		LLM: LLMConfig{
			Endpoint:     "https://api.openai.com/v1/chat/completions",
			Model:        "gpt-4o-mini",
			SystemPrompt: "Expert content formatter.",
			Temperature:  0.3,
			MaxTokens:    1500,
			Timeout:      Duration{60 * time.Second},
		},
		Search: SearchConfig{
			Provider:    "google",
			UserAgent:   DefaultUserAgent,
			Qualifier:   "blog article",
			ResultCount: 10,
			Timeout:     Duration{10 * time.Second},
		},
		Scraper: ScraperConfig{
			Timeout: Duration{10 * time.Second},
			Delay:   Duration{1500 * time.Millisecond},
		},
		Ledger: LedgerConfig{Driver: "sqlite"},
		Scheduler: SchedulerConfig{
			CronExpression: "0 6 * * *",
			Timezone:       defaultTimezone,
			location:       tz,
		},
	}
}
