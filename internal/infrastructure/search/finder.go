package search

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ArticleEnhancer/internal/domain"
	"ArticleEnhancer/internal/ports"
	"ArticleEnhancer/internal/search"
)

const (
	defaultQualifier   = "blog article"
	defaultResultCount = 10
	// MaxReferences bounds both scraping cost and prompt size.
	MaxReferences = 2
)

// blogSignals mark links that likely lead to long-form prose.
var blogSignals = []string{"blog", "medium.com", "dev.to"}

// FinderOptions tunes the query sent to the provider.
type FinderOptions struct {
	UserAgent   string
	Qualifier   string
	ResultCount int
	MaxResults  int
}

// Finder implements ports.ReferenceFinder on top of a search results page.
type Finder struct {
	client   *http.Client
	provider search.Provider
	opts     FinderOptions
	logger   *slog.Logger
}

var _ ports.ReferenceFinder = (*Finder)(nil)

// NewFinder wires an HTTP client and a provider strategy.
func NewFinder(client *http.Client, provider search.Provider, opts FinderOptions, log *slog.Logger) *Finder {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if opts.Qualifier == "" {
		opts.Qualifier = defaultQualifier
	}
	if opts.ResultCount <= 0 {
		opts.ResultCount = defaultResultCount
	}
	if opts.MaxResults <= 0 || opts.MaxResults > MaxReferences {
		opts.MaxResults = MaxReferences
	}
	return &Finder{
		client:   client,
		provider: provider,
		opts:     opts,
		logger:   log,
	}
}

// Find issues one search and returns at most MaxResults candidates in
// provider order. On failure it returns an empty slice and the cause.
func (f *Finder) Find(ctx context.Context, topic string) ([]domain.ReferenceCandidate, error) {
	if f.provider == nil {
		return []domain.ReferenceCandidate{}, fmt.Errorf("search provider is not configured")
	}
	if strings.TrimSpace(topic) == "" {
		return []domain.ReferenceCandidate{}, fmt.Errorf("empty search topic")
	}

	query := search.Query{Topic: topic, Qualifier: f.opts.Qualifier, Count: f.opts.ResultCount}
	pageURL, err := f.provider.BuildURL(query)
	if err != nil {
		return []domain.ReferenceCandidate{}, fmt.Errorf("%s: %w", f.provider.Name(), err)
	}

	f.debug("search", "provider", f.provider.Name(), "query", query.Text())

	doc, err := f.fetchDocument(ctx, pageURL)
	if err != nil {
		return []domain.ReferenceCandidate{}, fmt.Errorf("%s: %w", f.provider.Name(), err)
	}

	links := f.provider.ResultLinks(doc)
	selected := selectLinks(links, f.opts.MaxResults)

	candidates := make([]domain.ReferenceCandidate, 0, len(selected))
	for i, link := range selected {
		candidates = append(candidates, domain.ReferenceCandidate{URL: link, Rank: i})
	}

	f.debug("search done", "result_links", len(links), "selected", len(candidates))
	return candidates, nil
}

func (f *Finder) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if f.opts.UserAgent != "" {
		req.Header.Set("User-Agent", f.opts.UserAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request results page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse results page: %w", err)
	}

	return doc, nil
}

// selectLinks runs two ordered filters over the same link list: links with a
// long-form signal first, then any absolute link to fill the remaining slots.
// Uniqueness is a plain containment check against what was already picked.
func selectLinks(links []string, limit int) []string {
	selected := make([]string, 0, limit)

	for _, link := range links {
		if len(selected) >= limit {
			break
		}
		if isAbsoluteHTTP(link) && hasBlogSignal(link) && !slices.Contains(selected, link) {
			selected = append(selected, link)
		}
	}

	if len(selected) < limit {
		for _, link := range links {
			if len(selected) >= limit {
				break
			}
			if isAbsoluteHTTP(link) && !slices.Contains(selected, link) {
				selected = append(selected, link)
			}
		}
	}

	return selected
}

func hasBlogSignal(link string) bool {
	for _, signal := range blogSignals {
		if strings.Contains(link, signal) {
			return true
		}
	}
	return false
}

func isAbsoluteHTTP(link string) bool {
	parsed, err := url.Parse(link)
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}

func (f *Finder) debug(msg string, args ...interface{}) {
	if f.logger != nil {
		f.logger.Debug(msg, args...)
	}
}
