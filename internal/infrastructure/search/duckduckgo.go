package search

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"ArticleEnhancer/internal/search"
)

const (
	duckDuckGoSearchURL = "https://html.duckduckgo.com/html/"
	duckDuckGoName      = "duckduckgo"
)

// DuckDuckGoProvider reads the JavaScript-free DuckDuckGo results page.
type DuckDuckGoProvider struct {
	baseURL string
}

var _ search.Provider = (*DuckDuckGoProvider)(nil)

// NewDuckDuckGoProvider wires the results page URL; baseURL defaults to html.duckduckgo.com.
func NewDuckDuckGoProvider(baseURL string) *DuckDuckGoProvider {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = duckDuckGoSearchURL
	}
	return &DuckDuckGoProvider{baseURL: baseURL}
}

func (d *DuckDuckGoProvider) Name() string {
	return duckDuckGoName
}

// BuildURL ignores the page size; the HTML endpoint has a fixed page.
func (d *DuckDuckGoProvider) BuildURL(q search.Query) (string, error) {
	return buildSearchURL(d.baseURL, map[string]string{"q": q.Text()})
}

func (d *DuckDuckGoProvider) ResultLinks(doc *goquery.Document) []string {
	var links []string
	doc.Find("div.result").Each(func(_ int, block *goquery.Selection) {
		href, ok := block.Find("a.result__a").First().Attr("href")
		if !ok {
			return
		}
		links = append(links, unwrapRedirect(strings.TrimSpace(href), "/l/", "uddg"))
	})
	return links
}
