package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"

	"ArticleEnhancer/internal/domain"
	"ArticleEnhancer/internal/ports"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 2 << 20
)

var errEmptyContent = errors.New("no extractable content")

// CollectorOptions configures outbound fetches.
type CollectorOptions struct {
	UserAgent string
	Timeout   time.Duration
	// Delay is slept after every fetch attempt, successful or not.
	Delay time.Duration
}

// Collector implements ports.ReferenceCollector by fetching candidates one
// after another and extracting their text.
type Collector struct {
	client    *http.Client
	extractor ports.ContentExtractor
	userAgent string
	delay     time.Duration
	sleep     func(time.Duration)
	logger    *slog.Logger
}

var _ ports.ReferenceCollector = (*Collector)(nil)

// NewCollector wires an HTTP client; a nil client gets the configured timeout (10s default).
func NewCollector(client *http.Client, extractor ports.ContentExtractor, opts CollectorOptions, log *slog.Logger) *Collector {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Delay < 0 {
		opts.Delay = 0
	}
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	return &Collector{
		client:    client,
		extractor: extractor,
		userAgent: opts.UserAgent,
		delay:     opts.Delay,
		sleep:     time.Sleep,
		logger:    log,
	}
}

// Collect returns the usable references in candidate order. Failures of a
// single candidate are logged and skipped.
func (c *Collector) Collect(ctx context.Context, candidates []domain.ReferenceCandidate) []domain.Reference {
	refs := make([]domain.Reference, 0, len(candidates))

	for _, candidate := range candidates {
		ref, err := c.collectOne(ctx, candidate)
		if err != nil {
			c.warn("reference dropped", "url", candidate.URL, "rank", candidate.Rank, "error", err)
		} else {
			c.info("reference collected", "url", ref.URL, "title", ref.Title, "chars", len([]rune(ref.Text)))
			refs = append(refs, ref)
		}

		c.sleep(c.delay)
	}

	return refs
}

func (c *Collector) collectOne(ctx context.Context, candidate domain.ReferenceCandidate) (domain.Reference, error) {
	if c.extractor == nil {
		return domain.Reference{}, fmt.Errorf("content extractor is not configured")
	}

	html, err := c.fetch(ctx, candidate.URL)
	if err != nil {
		return domain.Reference{}, err
	}

	text := c.extractor.Extract(html)
	if text == "" {
		return domain.Reference{}, errEmptyContent
	}

	return domain.Reference{
		Title: pageTitle(html, candidate.URL),
		URL:   candidate.URL,
		Text:  text,
		Rank:  candidate.Rank,
	}, nil
}

func (c *Collector) fetch(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("page returned %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("read page: %w", err)
	}

	return string(body), nil
}

// pageTitle asks readability for the page title and falls back to the default.
func pageTitle(html, pageURL string) string {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return domain.DefaultReferenceTitle
	}

	article, err := readability.FromReader(strings.NewReader(html), parsed)
	if err != nil {
		return domain.DefaultReferenceTitle
	}

	title := strings.Join(strings.Fields(article.Title), " ")
	if title == "" {
		return domain.DefaultReferenceTitle
	}
	return title
}

func (c *Collector) info(msg string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Info(msg, args...)
	}
}

func (c *Collector) warn(msg string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}
