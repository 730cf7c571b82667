package ports

import (
	"context"
	"time"

	"ArticleEnhancer/internal/domain"
)

// ArticleStore is the external article storage service.
type ArticleStore interface {
	LatestOriginal(ctx context.Context) (domain.SourceArticle, error)
	Create(ctx context.Context, article domain.EnhancedArticle) (domain.EnhancedArticle, error)
}

// ReferenceFinder surfaces candidate reference URLs for a topic.
type ReferenceFinder interface {
	Find(ctx context.Context, topic string) ([]domain.ReferenceCandidate, error)
}

// ReferenceCollector scrapes candidates into usable references.
type ReferenceCollector interface {
	Collect(ctx context.Context, candidates []domain.ReferenceCandidate) []domain.Reference
}

// ContentExtractor turns raw HTML into bounded plain text.
type ContentExtractor interface {
	Extract(html string) string
}

// Synthesizer produces the enhanced article text.
type Synthesizer interface {
	Synthesize(ctx context.Context, original domain.SourceArticle, refs []domain.Reference) (string, error)
}

// Publisher submits the enhanced article to the storage service.
type Publisher interface {
	Publish(ctx context.Context, original domain.SourceArticle, text string, refs []domain.Reference) (domain.EnhancedArticle, error)
}

// ChatRequest is a single chat-style completion request.
type ChatRequest struct {
	System      string
	User        string
	Temperature float64
	MaxTokens   int
}

// ChatClient talks to an OpenAI-compatible chat completion API.
type ChatClient interface {
	Complete(ctx context.Context, req ChatRequest) (string, error)
}

// RunLedger persists run outcomes for audit and de-duplication.
type RunLedger interface {
	Record(ctx context.Context, record domain.RunRecord) error
	AlreadyEnhanced(ctx context.Context, articleID domain.ArticleID) (bool, error)
	Recent(ctx context.Context, limit int) ([]domain.RunRecord, error)
}

// Notifier announces published articles to Telegram or other channels.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
