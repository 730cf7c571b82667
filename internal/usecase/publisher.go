package usecase

import (
	"context"
	"errors"
	"fmt"

	"ArticleEnhancer/internal/domain"
	"ArticleEnhancer/internal/ports"
)

// ErrPublish marks a failed submission to the storage service.
var ErrPublish = errors.New("publish failed")

// StorePublisher implements ports.Publisher on top of the article store.
type StorePublisher struct {
	store ports.ArticleStore
}

var _ ports.Publisher = (*StorePublisher)(nil)

// NewPublisher wires the storage service client.
func NewPublisher(store ports.ArticleStore) *StorePublisher {
	return &StorePublisher{store: store}
}

// Publish submits one create call; any failure is final for the run.
func (p *StorePublisher) Publish(ctx context.Context, original domain.SourceArticle, text string, refs []domain.Reference) (domain.EnhancedArticle, error) {
	if p.store == nil {
		return domain.EnhancedArticle{}, fmt.Errorf("%w: article store is not configured", ErrPublish)
	}

	created, err := p.store.Create(ctx, BuildEnhancedArticle(original, text, refs))
	if err != nil {
		return domain.EnhancedArticle{}, fmt.Errorf("%w: %w", ErrPublish, err)
	}

	return created, nil
}

// BuildEnhancedArticle assembles the publish payload. The source URL is
// carried through and extracted reference text is left out.
func BuildEnhancedArticle(original domain.SourceArticle, text string, refs []domain.Reference) domain.EnhancedArticle {
	summaries := make([]domain.ReferenceSummary, 0, len(refs))
	for _, ref := range refs {
		summaries = append(summaries, ref.Summary())
	}

	return domain.EnhancedArticle{
		Title:             original.Title + domain.EnhancedTitleMarker,
		Content:           text,
		URL:               original.URL,
		IsEnhanced:        true,
		OriginalArticleID: original.ID,
		References:        summaries,
	}
}
