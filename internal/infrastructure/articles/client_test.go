package articles

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ArticleEnhancer/internal/domain"
)

func TestLatestOriginal(t *testing.T) {
	t.Parallel()

	queries := make(chan string, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queries <- r.URL.Path + "?" + r.URL.RawQuery
		_, _ = w.Write([]byte(`{"id":1,"title":"X","content":"Body","url":"https://blog.example.com/x"}`))
	}))
	defer server.Close()

	article, err := NewClient(server.URL+"/api/", time.Second).LatestOriginal(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.ArticleID("1"), article.ID)
	assert.Equal(t, "X", article.Title)
	assert.Equal(t, "Body", article.Content)
	assert.Equal(t, "https://blog.example.com/x", article.URL)
	assert.Equal(t, "/api/articles?latest=1&type=original", <-queries)
}

func TestDecodeArticleShapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		wantID  domain.ArticleID
		wantErr error
	}{
		{name: "bare", body: `{"id":7,"title":"T"}`, wantID: "7"},
		{name: "envelope", body: `{"data":{"id":"abc","title":"T"}}`, wantID: "abc"},
		{name: "list envelope", body: `{"data":[{"id":3},{"id":2}]}`, wantID: "3"},
		{name: "bare list", body: `[{"id":1,"title":"X"},{"id":2}]`, wantID: "1"},
		{name: "empty bare list", body: `[]`, wantErr: domain.ErrNoArticle},
		{name: "empty list", body: `{"data":[]}`, wantErr: domain.ErrNoArticle},
		{name: "null", body: `null`, wantErr: domain.ErrNoArticle},
		{name: "empty", body: ``, wantErr: domain.ErrNoArticle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			article, err := decodeArticle([]byte(tt.body))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, article.ID)
		})
	}
}

func TestLatestOriginalBareList(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"id":1,"title":"X","content":"Body","url":"https://blog.example.com/x"}]`))
	}))
	defer server.Close()

	article, err := NewClient(server.URL, time.Second).LatestOriginal(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.ArticleID("1"), article.ID)
	assert.Equal(t, "X", article.Title)
}

func TestLatestOriginalNoArticle(t *testing.T) {
	t.Parallel()

	for _, handler := range []http.HandlerFunc{
		func(w http.ResponseWriter, r *http.Request) { http.NotFound(w, r) },
		func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte(`{}`)) },
	} {
		server := httptest.NewServer(handler)
		_, err := NewClient(server.URL, time.Second).LatestOriginal(context.Background())
		server.Close()
		require.ErrorIs(t, err, domain.ErrNoArticle)
	}
}

func TestLatestOriginalServerError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := NewClient(server.URL, time.Second).LatestOriginal(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNoArticle)
}

func TestCreate(t *testing.T) {
	t.Parallel()

	bodies := make(chan map[string]any, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/articles", r.URL.Path)
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		bodies <- body
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":42,"title":"X (Enhanced)"}}`))
	}))
	defer server.Close()

	in := domain.EnhancedArticle{
		Title:             "X (Enhanced)",
		Content:           "better",
		URL:               "https://blog.example.com/x",
		IsEnhanced:        true,
		OriginalArticleID: "1",
		References:        []domain.ReferenceSummary{{Title: "Reference", URL: "https://a.com/blog/x"}},
	}

	created, err := NewClient(server.URL, time.Second).Create(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, domain.ArticleID("42"), created.ID)
	assert.Equal(t, "better", created.Content)

	body := <-bodies
	assert.Equal(t, true, body["is_enhanced"])
	assert.Equal(t, float64(1), body["original_article_id"])
	assert.Equal(t, "X (Enhanced)", body["title"])
	assert.NotContains(t, body, "id")
	refs, ok := body["references"].([]any)
	require.True(t, ok)
	require.Len(t, refs, 1)
	assert.Equal(t, map[string]any{"title": "Reference", "url": "https://a.com/blog/x"}, refs[0])
}

func TestCreateFailures(t *testing.T) {
	t.Parallel()

	for _, handler := range []http.HandlerFunc{
		func(w http.ResponseWriter, _ *http.Request) { http.Error(w, "invalid", http.StatusUnprocessableEntity) },
		func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte(`{"data":{}}`)) },
		func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte(`<html>`)) },
	} {
		server := httptest.NewServer(handler)
		_, err := NewClient(server.URL, time.Second).Create(context.Background(), domain.EnhancedArticle{Title: "x"})
		server.Close()
		require.Error(t, err)
	}
}
