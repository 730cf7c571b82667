package search

import (
	"fmt"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Query carries everything needed to build one search request.
type Query struct {
	Topic     string
	Qualifier string
	Count     int
}

// Text joins the topic and the qualifier into the final search string.
func (q Query) Text() string {
	topic := strings.TrimSpace(q.Topic)
	qualifier := strings.TrimSpace(q.Qualifier)
	if qualifier == "" {
		return topic
	}
	return topic + " " + qualifier
}

// Provider captures a single search results page layout (Google, DuckDuckGo, etc.).
type Provider interface {
	Name() string
	BuildURL(q Query) (string, error)
	// ResultLinks returns the first link of every result block in page order.
	// Links are returned as found; callers decide which are usable.
	ResultLinks(doc *goquery.Document) []string
}

// Registry keeps a mapping from provider names to their implementations.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry builds a registry holding the given providers.
func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: map[string]Provider{}}
	for _, p := range providers {
		r.Register(p)
	}
	return r
}

// Register adds or replaces a provider implementation.
func (r *Registry) Register(provider Provider) {
	if r.providers == nil {
		r.providers = map[string]Provider{}
	}
	r.providers[provider.Name()] = provider
}

// Resolve returns a provider by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Provider, error) {
	if provider, ok := r.providers[strings.ToLower(strings.TrimSpace(name))]; ok {
		return provider, nil
	}
	return nil, fmt.Errorf("search provider %q is not registered (known: %s)", name, strings.Join(r.Names(), ", "))
}

// Names lists registered providers in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
