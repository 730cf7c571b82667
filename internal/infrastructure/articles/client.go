package articles

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ArticleEnhancer/internal/domain"
	"ArticleEnhancer/internal/ports"
)

// Client talks to the article storage HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

var _ ports.ArticleStore = (*Client)(nil)

// NewClient creates a reusable HTTP client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// LatestOriginal returns the most recent non-enhanced article.
func (c *Client) LatestOriginal(ctx context.Context) (domain.SourceArticle, error) {
	query := url.Values{}
	query.Set("latest", "1")
	query.Set("type", "original")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/articles?"+query.Encode(), nil)
	if err != nil {
		return domain.SourceArticle{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.SourceArticle{}, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return domain.SourceArticle{}, domain.ErrNoArticle
	}
	if resp.StatusCode != http.StatusOK {
		return domain.SourceArticle{}, fmt.Errorf("unexpected status %s", resp.Status)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.SourceArticle{}, fmt.Errorf("read response body: %w", err)
	}

	article, err := decodeArticle(raw)
	if err != nil {
		return domain.SourceArticle{}, err
	}
	if article.ID == "" {
		return domain.SourceArticle{}, domain.ErrNoArticle
	}

	return article, nil
}

// Create stores the enhanced article and returns it with the assigned identifier.
func (c *Client) Create(ctx context.Context, article domain.EnhancedArticle) (domain.EnhancedArticle, error) {
	var resp struct {
		Data *domain.EnhancedArticle `json:"data"`
	}

	if err := c.post(ctx, "/articles", article, &resp); err != nil {
		return domain.EnhancedArticle{}, err
	}
	if resp.Data == nil || resp.Data.ID == "" {
		return domain.EnhancedArticle{}, fmt.Errorf("create article: response carries no id")
	}

	created := article
	created.ID = resp.Data.ID
	return created, nil
}

// decodeArticle accepts a bare article, a bare list, a {"data": {...}}
// envelope or a {"data": [...]} list; empty bodies and null mean no article.
// Lists yield their first element.
func decodeArticle(raw []byte) (domain.SourceArticle, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return domain.SourceArticle{}, domain.ErrNoArticle
	}
	if raw[0] == '[' {
		return firstArticle(raw)
	}

	var envelope struct {
		domain.SourceArticle
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return domain.SourceArticle{}, fmt.Errorf("decode article: %w", err)
	}

	data := bytes.TrimSpace(envelope.Data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		return envelope.SourceArticle, nil
	case data[0] == '[':
		return firstArticle(data)
	default:
		var article domain.SourceArticle
		if err := json.Unmarshal(data, &article); err != nil {
			return domain.SourceArticle{}, fmt.Errorf("decode article data: %w", err)
		}
		return article, nil
	}
}

func firstArticle(raw []byte) (domain.SourceArticle, error) {
	var list []domain.SourceArticle
	if err := json.Unmarshal(raw, &list); err != nil {
		return domain.SourceArticle{}, fmt.Errorf("decode article list: %w", err)
	}
	if len(list) == 0 {
		return domain.SourceArticle{}, domain.ErrNoArticle
	}
	return list[0], nil
}

func (c *Client) post(ctx context.Context, path string, payload any, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		closeErr := resp.Body.Close()
		if closeErr != nil {
			return fmt.Errorf("unexpected status %s, close body: %v", resp.Status, closeErr)
		}
		return fmt.Errorf("unexpected status %s: %s", resp.Status, strings.TrimSpace(string(snippet)))
	}

	if v == nil {
		if err := resp.Body.Close(); err != nil {
			return fmt.Errorf("close response body: %w", err)
		}
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		_ = resp.Body.Close()
		return fmt.Errorf("decode response: %w", err)
	}

	if err := resp.Body.Close(); err != nil {
		return fmt.Errorf("close response body: %w", err)
	}

	return nil
}
