package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ArticleEnhancer/internal/config"
	"ArticleEnhancer/internal/domain"
	"ArticleEnhancer/internal/logging"
	"ArticleEnhancer/internal/search"
)

var envKeys = []string{
	"ENHANCER_CONFIG", "STORAGE_API_URL", "LARAVEL_API_URL", "OPENAI_API_KEY", "OPENAI_MODEL",
	"SEARCH_USER_AGENT", "SEARCH_PROVIDER", "LEDGER_DRIVER", "LEDGER_DSN",
	"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "LOG_LEVEL",
}

func loadConfig(t *testing.T, yaml string) config.Config {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	return cfg
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := loadConfig(t, "storage:\n  apiUrl: not-a-url\n")

	_, err := New(context.Background(), cfg, logging.NewWithWriter(&strings.Builder{}, "error"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "llm.apiKey is required")
	assert.Contains(t, err.Error(), "storage.apiUrl")
}

func TestNewRejectsUnknownProvider(t *testing.T) {
	cfg := loadConfig(t, "llm:\n  apiKey: sk-test\nsearch:\n  provider: altavista\n")

	_, err := New(context.Background(), cfg, logging.NewWithWriter(&strings.Builder{}, "error"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "altavista")
}

func TestHistoryRequiresLedger(t *testing.T) {
	cfg := loadConfig(t, "llm:\n  apiKey: sk-test\n")

	application, err := New(context.Background(), cfg, logging.NewWithWriter(&strings.Builder{}, "error"))
	require.NoError(t, err)
	defer application.Close()

	_, err = application.History(context.Background(), 5)
	require.ErrorIs(t, err, ErrLedgerDisabled)

	_, err = OpenLedger(context.Background(), cfg.Ledger)
	require.ErrorIs(t, err, ErrLedgerDisabled)
}

func TestOpenLedgerWithoutPipelineSettings(t *testing.T) {
	cfg := loadConfig(t, fmt.Sprintf("ledger:\n  driver: sqlite\n  dsn: \"file:%s\"\n", filepath.Join(t.TempDir(), "runs.db")))

	_, err := New(context.Background(), cfg, logging.NewWithWriter(&strings.Builder{}, "error"))
	require.Error(t, err, "the full pipeline still needs an API key")

	ledger, err := OpenLedger(context.Background(), cfg.Ledger)
	require.NoError(t, err)
	defer ledger.Close()

	records, err := ledger.Recent(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestOpenLedgerRejectsDriver(t *testing.T) {
	t.Parallel()

	_, err := OpenLedger(context.Background(), config.LedgerConfig{Driver: "mysql", DSN: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mysql")
}

func TestNewRegistryCustomEndpoint(t *testing.T) {
	t.Parallel()

	registry := newRegistry(config.SearchConfig{Provider: "duckduckgo", Endpoint: "http://127.0.0.1:9/html"})
	assert.Equal(t, []string{"duckduckgo", "google"}, registry.Names())

	provider, err := registry.Resolve("duckduckgo")
	require.NoError(t, err)
	raw, err := provider.BuildURL(search.Query{Topic: "go"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(raw, "http://127.0.0.1:9/html?"), raw)
}

// TestRunEndToEnd drives one run through real adapters against local servers.
func TestRunEndToEnd(t *testing.T) {
	reference := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, "<html><head><title>Style Guide</title></head><body><article><p>%s</p></article></body></html>",
			strings.Repeat("Readable reference prose. ", 40))
	}))
	defer reference.Close()

	searchPage := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, `<html><body><div class="g"><a href="%s/blog/post">hit</a></div></body></html>`, reference.URL)
	}))
	defer searchPage.Close()

	created := make(chan map[string]any, 1)
	storage := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			_, _ = w.Write([]byte(`{"data":{"id":1,"title":"X","content":"Original body.","url":"https://blog.example.com/x"}}`))
			return
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		created <- body
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":2}}`))
	}))
	defer storage.Close()

	prompts := make(chan string, 1)
	chat := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		prompts <- req.Messages[len(req.Messages)-1].Content
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"# X\n\nBetter body."}}]}`))
	}))
	defer chat.Close()

	cfg := loadConfig(t, fmt.Sprintf(`
storage:
  apiUrl: %s/api
llm:
  apiKey: sk-test
  endpoint: %s/v1/chat/completions
search:
  provider: google
  endpoint: %s/search
scraper:
  delay: 1ms
ledger:
  driver: sqlite
  dsn: "file:%s"
`, storage.URL, chat.URL, searchPage.URL, filepath.Join(t.TempDir(), "ledger.db")))

	application, err := New(context.Background(), cfg, logging.NewWithWriter(&strings.Builder{}, "error"))
	require.NoError(t, err)
	defer application.Close()

	result, err := application.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.StateDone, result.State)
	require.Len(t, result.References, 1)
	assert.NotEmpty(t, result.References[0].Title)

	assert.Contains(t, <-prompts, "Ref 1: "+result.References[0].Title+"\n"+reference.URL+"/blog/post\n")

	body := <-created
	assert.Equal(t, "X (Enhanced)", body["title"])
	assert.Equal(t, "# X\n\nBetter body.", body["content"])
	assert.Equal(t, float64(1), body["original_article_id"])

	history, err := application.History(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.StateDone, history[0].State)
	assert.Equal(t, domain.ArticleID("2"), history[0].EnhancedArticleID)

	again, err := application.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.StateSkipped, again.State)
	assert.Equal(t, "article already enhanced", again.Reason)
}
