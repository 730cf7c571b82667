package search

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"ArticleEnhancer/internal/search"
)

const (
	googleSearchURL = "https://www.google.com/search"
	googleName      = "google"
)

// GoogleProvider reads the classic Google results page, one div.g per result.
type GoogleProvider struct {
	baseURL string
}

var _ search.Provider = (*GoogleProvider)(nil)

// NewGoogleProvider wires the results page URL; baseURL defaults to google.com.
func NewGoogleProvider(baseURL string) *GoogleProvider {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = googleSearchURL
	}
	return &GoogleProvider{baseURL: baseURL}
}

// Name identifies the provider inside the registry.
func (g *GoogleProvider) Name() string {
	return googleName
}

// BuildURL encodes the query and the requested page size.
func (g *GoogleProvider) BuildURL(q search.Query) (string, error) {
	params := map[string]string{"q": q.Text()}
	if q.Count > 0 {
		params["num"] = strconv.Itoa(q.Count)
	}
	return buildSearchURL(g.baseURL, params)
}

// ResultLinks takes the first anchor of every result block.
func (g *GoogleProvider) ResultLinks(doc *goquery.Document) []string {
	var links []string
	doc.Find("div.g").Each(func(_ int, block *goquery.Selection) {
		href, ok := block.Find("a").First().Attr("href")
		if !ok {
			return
		}
		links = append(links, unwrapRedirect(strings.TrimSpace(href), "/url", "q"))
	})
	return links
}

func buildSearchURL(base string, params map[string]string) (string, error) {
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid search url %s: %w", base, err)
	}

	query := parsed.Query()
	for key, value := range params {
		query.Set(key, value)
	}
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

// unwrapRedirect resolves result links that point at the provider's own
// redirector (e.g. /url?q=<target>) to the target they carry.
func unwrapRedirect(href, redirectPath, param string) string {
	parsed, err := url.Parse(href)
	if err != nil {
		return href
	}
	if parsed.Host != "" && parsed.Scheme != "" {
		return href
	}
	if !strings.HasPrefix(parsed.Path, redirectPath) {
		return href
	}
	if target := parsed.Query().Get(param); target != "" {
		return target
	}
	return href
}
