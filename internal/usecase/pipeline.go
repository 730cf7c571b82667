package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"ArticleEnhancer/internal/domain"
	"ArticleEnhancer/internal/ports"
)

// MaxReferences caps how many scraped references reach the synthesizer.
const MaxReferences = 2

// PipelineDeps wires all driven adapters into the enhancement pipeline.
type PipelineDeps struct {
	Store       ports.ArticleStore
	Finder      ports.ReferenceFinder
	Collector   ports.ReferenceCollector
	Synthesizer ports.Synthesizer
	Publisher   ports.Publisher
	Ledger      ports.RunLedger
	Notifier    ports.Notifier
	Logger      *slog.Logger
	NewRunID    func() string
	Now         func() time.Time
}

// Pipeline runs one enhancement attempt per call.
type Pipeline struct {
	store       ports.ArticleStore
	finder      ports.ReferenceFinder
	collector   ports.ReferenceCollector
	synthesizer ports.Synthesizer
	publisher   ports.Publisher
	ledger      ports.RunLedger
	notifier    ports.Notifier
	logger      *slog.Logger
	newRunID    func() string
	now         func() time.Time
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	newRunID := deps.NewRunID
	if newRunID == nil {
		newRunID = uuid.NewString
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	return &Pipeline{
		store:       deps.Store,
		finder:      deps.Finder,
		collector:   deps.Collector,
		synthesizer: deps.Synthesizer,
		publisher:   deps.Publisher,
		ledger:      deps.Ledger,
		notifier:    deps.Notifier,
		logger:      logger.With("component", "pipeline"),
		newRunID:    newRunID,
		now:         now,
	}
}

// Run walks FetchOriginal, FindReferences, CollectReferences, Synthesize and
// Publish in order. The returned error is non-nil only when the run Failed;
// Skipped and Done both return nil.
func (p *Pipeline) Run(ctx context.Context) (domain.RunResult, error) {
	result := domain.RunResult{
		RunID:     p.newRunID(),
		State:     domain.StateFetchOriginal,
		StartedAt: p.now(),
	}
	log := p.logger.With("run_id", result.RunID)
	defer p.record(ctx, log, &result)

	if p.store == nil || p.collector == nil || p.synthesizer == nil || p.publisher == nil {
		return p.fail(log, &result, errors.New("pipeline is not fully wired"))
	}

	article, err := p.store.LatestOriginal(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNoArticle) {
			log.Info("no original article to enhance")
			return p.skip(log, &result, "no article available"), nil
		}
		log.Warn("fetch original article failed", "error", err)
		return p.skip(log, &result, fmt.Sprintf("fetch original: %v", err)), nil
	}
	result.Article = &article
	log = log.With("article_id", article.ID.String())

	if p.ledger != nil {
		done, lErr := p.ledger.AlreadyEnhanced(ctx, article.ID)
		if lErr != nil {
			log.Warn("ledger lookup failed", "error", lErr)
		} else if done {
			return p.skip(log, &result, "article already enhanced"), nil
		}
	}

	result.State = domain.StateFindReferences
	var candidates []domain.ReferenceCandidate
	if p.finder != nil {
		candidates, err = p.finder.Find(ctx, article.Title)
		if err != nil {
			log.Warn("reference search failed, continuing without candidates", "error", err)
			candidates = nil
		}
	}
	log.Debug("reference candidates found", "count", len(candidates))

	result.State = domain.StateCollectReferences
	refs := p.collector.Collect(ctx, candidates)
	if len(refs) > MaxReferences {
		refs = refs[:MaxReferences]
	}
	result.References = refs
	if len(refs) == 0 {
		return p.skip(log, &result, "no usable references"), nil
	}
	log.Info("references collected", "count", len(refs))

	result.State = domain.StateSynthesize
	text, err := p.synthesizer.Synthesize(ctx, article, refs)
	if err != nil {
		return p.fail(log, &result, err)
	}

	result.State = domain.StatePublish
	enhanced, err := p.publisher.Publish(ctx, article, text, refs)
	if err != nil {
		return p.fail(log, &result, err)
	}
	result.Enhanced = &enhanced

	result.State = domain.StateDone
	result.FinishedAt = p.now()
	log.Info("article enhanced", "enhanced_id", enhanced.ID.String(), "references", len(refs))

	p.notify(ctx, log, enhanced)
	return result, nil
}

func (p *Pipeline) skip(log *slog.Logger, result *domain.RunResult, reason string) domain.RunResult {
	log.Info("run skipped", "stage", string(result.State), "reason", reason)
	result.State = domain.StateSkipped
	result.Reason = reason
	result.FinishedAt = p.now()
	return *result
}

func (p *Pipeline) fail(log *slog.Logger, result *domain.RunResult, err error) (domain.RunResult, error) {
	err = fmt.Errorf("%s: %w", result.State, err)
	log.Error("run failed", "stage", string(result.State), "error", err)
	result.State = domain.StateFailed
	result.Err = err
	result.FinishedAt = p.now()
	return *result, err
}

func (p *Pipeline) record(ctx context.Context, log *slog.Logger, result *domain.RunResult) {
	if p.ledger == nil || !result.State.Terminal() {
		return
	}
	if err := p.ledger.Record(ctx, result.Record()); err != nil {
		log.Warn("record run failed", "error", err)
	}
}

func (p *Pipeline) notify(ctx context.Context, log *slog.Logger, enhanced domain.EnhancedArticle) {
	if p.notifier == nil {
		return
	}
	if err := p.notifier.Notify(ctx, buildNotice(enhanced)); err != nil {
		log.Warn("notification failed", "error", err)
	}
}

func buildNotice(article domain.EnhancedArticle) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Enhanced article published: %s", article.Title)
	if article.URL != "" {
		fmt.Fprintf(&b, "\nSource: %s", article.URL)
	}
	for _, ref := range article.References {
		fmt.Fprintf(&b, "\n- %s %s", ref.Title, ref.URL)
	}
	return b.String()
}
