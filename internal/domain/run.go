package domain

import (
	"errors"
	"time"
)

// ErrNoArticle means the storage service has no original article to enhance.
var ErrNoArticle = errors.New("no article available")

// RunState enumerates pipeline stages and terminal outcomes.
type RunState string

const (
	StateFetchOriginal     RunState = "fetch_original"
	StateFindReferences    RunState = "find_references"
	StateCollectReferences RunState = "collect_references"
	StateSynthesize        RunState = "synthesize"
	StatePublish           RunState = "publish"
	StateDone              RunState = "done"
	StateSkipped           RunState = "skipped"
	StateFailed            RunState = "failed"
)

// Terminal reports whether no further transition is possible.
func (s RunState) Terminal() bool {
	return s == StateDone || s == StateSkipped || s == StateFailed
}

// RunResult describes how a single run ended.
type RunResult struct {
	RunID      string
	State      RunState
	Reason     string
	Article    *SourceArticle
	References []Reference
	Enhanced   *EnhancedArticle
	Err        error
	StartedAt  time.Time
	FinishedAt time.Time
}

// Record flattens the result into a ledger row.
func (r RunResult) Record() RunRecord {
	rec := RunRecord{
		RunID:          r.RunID,
		State:          r.State,
		Reason:         r.Reason,
		ReferenceCount: len(r.References),
		StartedAt:      r.StartedAt,
		FinishedAt:     r.FinishedAt,
	}
	if r.Article != nil {
		rec.ArticleID = r.Article.ID
	}
	if r.Enhanced != nil {
		rec.EnhancedArticleID = r.Enhanced.ID
	}
	if r.Err != nil && rec.Reason == "" {
		rec.Reason = r.Err.Error()
	}
	return rec
}

// RunRecord is persisted to the run ledger for audit and de-duplication.
type RunRecord struct {
	RunID             string
	ArticleID         ArticleID
	State             RunState
	Reason            string
	ReferenceCount    int
	EnhancedArticleID ArticleID
	StartedAt         time.Time
	FinishedAt        time.Time
}
