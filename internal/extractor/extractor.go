// Package extractor turns arbitrary HTML into a bounded plain-text body.
package extractor

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

const (
	// MinContainerLength is the length a content container must exceed to be used.
	MinContainerLength = 300
	// MaxContentLength caps the extracted text to keep prompt size predictable.
	MaxContentLength = 4000
)

// noiseSelector matches regions that are never content, at any depth.
const noiseSelector = "script, style, nav, footer, header"

// containerSelectors are tried in order; semantic containers come first.
var containerSelectors = []string{
	"article",
	"main",
	".post-content",
	".entry-content",
	".content",
}

// Extractor implements ports.ContentExtractor with goquery.
type Extractor struct {
	minContainer int
	maxLength    int
}

// New returns an extractor with the default thresholds.
func New() *Extractor {
	return &Extractor{minContainer: MinContainerLength, maxLength: MaxContentLength}
}

// Extract returns cleaned text or "" when nothing usable was found.
func (e *Extractor) Extract(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	doc.Find(noiseSelector).Remove()

	content := ""
	for _, sel := range containerSelectors {
		node := doc.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		content = strings.TrimSpace(node.Text())
		if utf8.RuneCountInString(content) > e.minContainer {
			break
		}
	}

	if utf8.RuneCountInString(content) <= e.minContainer {
		content = paragraphText(doc)
	}

	return truncate(normalize(content), e.maxLength)
}

func paragraphText(doc *goquery.Document) string {
	paragraphs := doc.Find("p").Map(func(_ int, s *goquery.Selection) string {
		return s.Text()
	})
	return strings.TrimSpace(strings.Join(paragraphs, "\n"))
}

// normalize collapses every whitespace run into a single space.
func normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

func truncate(text string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:limit]))
}
