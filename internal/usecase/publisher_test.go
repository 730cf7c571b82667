package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ArticleEnhancer/internal/domain"
)

func TestBuildEnhancedArticle(t *testing.T) {
	t.Parallel()

	original := domain.SourceArticle{ID: "7", Title: "Go tips", Content: "old", URL: "https://blog.example.com/go"}
	refs := []domain.Reference{{Title: "Ref", URL: "https://a.com/blog", Text: "long text", Rank: 0}}

	got := BuildEnhancedArticle(original, "new", refs)

	assert.Equal(t, domain.EnhancedArticle{
		Title:             "Go tips (Enhanced)",
		Content:           "new",
		URL:               "https://blog.example.com/go",
		IsEnhanced:        true,
		OriginalArticleID: "7",
		References:        []domain.ReferenceSummary{{Title: "Ref", URL: "https://a.com/blog"}},
	}, got)
}

func TestPublish(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	created, err := NewPublisher(store).Publish(context.Background(), domain.SourceArticle{ID: "1", Title: "X"}, "text", nil)
	require.NoError(t, err)
	assert.Equal(t, domain.ArticleID("99"), created.ID)
	require.Len(t, store.created, 1)
	assert.NotNil(t, store.created[0].References)
}

func TestPublishFailure(t *testing.T) {
	t.Parallel()

	_, err := NewPublisher(&fakeStore{err: errors.New("500")}).Publish(context.Background(), domain.SourceArticle{}, "text", nil)
	require.ErrorIs(t, err, ErrPublish)

	_, err = NewPublisher(nil).Publish(context.Background(), domain.SourceArticle{}, "text", nil)
	require.ErrorIs(t, err, ErrPublish)
}
