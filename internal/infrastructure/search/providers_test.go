package search

import (
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"ArticleEnhancer/internal/search"
)

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("new document: %v", err)
	}
	return doc
}

func TestGoogleBuildURL(t *testing.T) {
	t.Parallel()

	g := NewGoogleProvider("")
	u, err := g.BuildURL(search.Query{Topic: "Go generics", Qualifier: "blog article", Count: 10})
	if err != nil {
		t.Fatalf("BuildURL returned error: %v", err)
	}

	parsed, err := url.Parse(u)
	if err != nil {
		t.Fatalf("parse result: %v", err)
	}

	if parsed.Scheme != "https" || parsed.Host != "www.google.com" || parsed.Path != "/search" {
		t.Fatalf("unexpected url: %s", u)
	}

	q := parsed.Query()
	if q.Get("q") != "Go generics blog article" {
		t.Fatalf("unexpected q: %s", q.Get("q"))
	}
	if q.Get("num") != "10" {
		t.Fatalf("expected num=10, got %s", q.Get("num"))
	}
}

func TestGoogleResultLinks(t *testing.T) {
	t.Parallel()

	doc := mustDoc(t, `
	<div id="search">
	  <div class="g"><a href="https://example.com/blog/one">One</a><a href="https://other.com">x</a></div>
	  <div class="g"><span>no link here</span></div>
	  <div class="g"><a href="/url?q=https://medium.com/two&amp;sa=U">Two</a></div>
	  <div class="g"><a href="/search?q=related">Related</a></div>
	</div>`)

	links := NewGoogleProvider("").ResultLinks(doc)
	want := []string{"https://example.com/blog/one", "https://medium.com/two", "/search?q=related"}
	if len(links) != len(want) {
		t.Fatalf("expected %d links, got %d: %v", len(want), len(links), links)
	}
	for i := range want {
		if links[i] != want[i] {
			t.Fatalf("link %d: expected %s, got %s", i, want[i], links[i])
		}
	}
}

func TestDuckDuckGoResultLinks(t *testing.T) {
	t.Parallel()

	doc := mustDoc(t, `
	<div class="results">
	  <div class="result"><h2><a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fdev.to%2Fpost&amp;rut=abc">Post</a></h2></div>
	  <div class="result"><a class="result__snippet" href="https://ignored.com">snippet</a></div>
	  <div class="result"><a class="result__a" href="https://example.org/guide">Guide</a></div>
	</div>`)

	links := NewDuckDuckGoProvider("").ResultLinks(doc)
	if len(links) != 2 {
		t.Fatalf("expected 2 links, got %v", links)
	}
	if links[0] != "https://dev.to/post" {
		t.Fatalf("unexpected unwrapped link: %s", links[0])
	}
	if links[1] != "https://example.org/guide" {
		t.Fatalf("unexpected link: %s", links[1])
	}
}

func TestRegistryResolve(t *testing.T) {
	t.Parallel()

	reg := search.NewRegistry(NewGoogleProvider(""), NewDuckDuckGoProvider(""))

	p, err := reg.Resolve("Google")
	if err != nil {
		t.Fatalf("resolve google: %v", err)
	}
	if p.Name() != "google" {
		t.Fatalf("unexpected provider: %s", p.Name())
	}

	if _, err := reg.Resolve("bing"); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
}
