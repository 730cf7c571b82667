package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ArticleID is the identifier assigned by the article storage service.
// The service may use numeric or string identifiers; both are accepted.
type ArticleID string

// UnmarshalJSON accepts both JSON numbers and strings.
func (id *ArticleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("article id: %w", err)
		}
		*id = ArticleID(strings.TrimSpace(s))
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("article id: %w", err)
	}
	*id = ArticleID(n.String())
	return nil
}

// MarshalJSON writes canonical integers back as numbers; anything else,
// including "007" or "+5", stays a string.
func (id ArticleID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id ArticleID) String() string {
	return string(id)
}

// SourceArticle is the published article being enhanced. It is a read-only
// snapshot for the duration of a run.
type SourceArticle struct {
	ID      ArticleID `json:"id"`
	Title   string    `json:"title"`
	Content string    `json:"content"`
	URL     string    `json:"url"`
}

// ReferenceCandidate is a URL surfaced by search before it is scraped.
type ReferenceCandidate struct {
	URL  string
	Rank int
}

// DefaultReferenceTitle is used when a scraped page has no usable title.
const DefaultReferenceTitle = "Reference"

// Reference is a successfully scraped candidate. Text is never empty.
type Reference struct {
	Title string
	URL   string
	Text  string
	Rank  int
}

// Summary drops the extracted text, which is never forwarded downstream.
func (r Reference) Summary() ReferenceSummary {
	return ReferenceSummary{Title: r.Title, URL: r.URL}
}

// ReferenceSummary is the provenance entry attached to an enhanced article.
type ReferenceSummary struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// EnhancedTitleMarker is appended to the source title of every enhanced article.
const EnhancedTitleMarker = " (Enhanced)"

// EnhancedArticle is the synthesis output as accepted by the storage service.
type EnhancedArticle struct {
	ID                ArticleID          `json:"id,omitempty"`
	Title             string             `json:"title"`
	Content           string             `json:"content"`
	URL               string             `json:"url"`
	IsEnhanced        bool               `json:"is_enhanced"`
	OriginalArticleID ArticleID          `json:"original_article_id"`
	References        []ReferenceSummary `json:"references"`
}
