package storage

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"ArticleEnhancer/internal/domain"
	"ArticleEnhancer/internal/ports"
)

const runsTable = "enhancement_runs"

const createRunsTable = `CREATE TABLE IF NOT EXISTS enhancement_runs (
	run_id              TEXT PRIMARY KEY,
	article_id          TEXT NOT NULL DEFAULT '',
	state               TEXT NOT NULL,
	reason              TEXT NOT NULL DEFAULT '',
	reference_count     INTEGER NOT NULL DEFAULT 0,
	enhanced_article_id TEXT NOT NULL DEFAULT '',
	started_at          BIGINT NOT NULL,
	finished_at         BIGINT NOT NULL
)`

var runColumns = []string{
	"run_id",
	"article_id",
	"state",
	"reason",
	"reference_count",
	"enhanced_article_id",
	"started_at",
	"finished_at",
}

// runRow mirrors one enhancement_runs row.
type runRow struct {
	RunID             string `db:"run_id"`
	ArticleID         string `db:"article_id"`
	State             string `db:"state"`
	Reason            string `db:"reason"`
	ReferenceCount    int    `db:"reference_count"`
	EnhancedArticleID string `db:"enhanced_article_id"`
	StartedAt         int64  `db:"started_at"`
	FinishedAt        int64  `db:"finished_at"`
}

func (row runRow) record() domain.RunRecord {
	return domain.RunRecord{
		RunID:             row.RunID,
		ArticleID:         domain.ArticleID(row.ArticleID),
		State:             domain.RunState(row.State),
		Reason:            row.Reason,
		ReferenceCount:    row.ReferenceCount,
		EnhancedArticleID: domain.ArticleID(row.EnhancedArticleID),
		StartedAt:         time.Unix(0, row.StartedAt).UTC(),
		FinishedAt:        time.Unix(0, row.FinishedAt).UTC(),
	}
}

// RunLedger persists run outcomes into SQLite or Postgres.
type RunLedger struct {
	db      *sqlx.DB
	builder sq.StatementBuilderType
}

var _ ports.RunLedger = (*RunLedger)(nil)

// Open connects to the ledger database and creates the schema.
// Supported drivers are "sqlite" and "postgres".
func Open(ctx context.Context, driver, dsn string) (*RunLedger, error) {
	switch driver {
	case "sqlite", "postgres":
	default:
		return nil, fmt.Errorf("unsupported ledger driver %q", driver)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s ledger: %w", driver, err)
	}
	if driver == "sqlite" {
		// One connection keeps :memory: databases shared and avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s ledger: %w", driver, err)
	}

	ledger := NewRunLedger(db)
	if err := ledger.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return ledger, nil
}

// NewRunLedger wires an open database; its driver name picks the placeholder format.
func NewRunLedger(db *sqlx.DB) *RunLedger {
	builder := sq.StatementBuilder.PlaceholderFormat(sq.Question)
	if db != nil && db.DriverName() == "postgres" {
		builder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}
	return &RunLedger{db: db, builder: builder}
}

// Migrate creates the runs table when it is missing.
func (r *RunLedger) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createRunsTable); err != nil {
		return fmt.Errorf("create %s: %w", runsTable, err)
	}
	return nil
}

// Record inserts one finished run.
func (r *RunLedger) Record(ctx context.Context, record domain.RunRecord) error {
	if r.db == nil {
		return nil
	}

	query, args, err := r.builder.
		Insert(runsTable).
		Columns(runColumns...).
		Values(
			record.RunID,
			string(record.ArticleID),
			string(record.State),
			record.Reason,
			record.ReferenceCount,
			string(record.EnhancedArticleID),
			record.StartedAt.UnixNano(),
			record.FinishedAt.UnixNano(),
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert run %s: %w", record.RunID, err)
	}

	return nil
}

// AlreadyEnhanced reports whether a run for the article has been published.
func (r *RunLedger) AlreadyEnhanced(ctx context.Context, articleID domain.ArticleID) (bool, error) {
	if r.db == nil || articleID == "" {
		return false, nil
	}

	query, args, err := r.builder.
		Select("COUNT(1)").
		From(runsTable).
		Where(sq.Eq{"article_id": string(articleID), "state": string(domain.StateDone)}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build select: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return false, fmt.Errorf("query enhanced: %w", err)
	}

	return count > 0, nil
}

// Recent returns the latest runs, newest first.
func (r *RunLedger) Recent(ctx context.Context, limit int) ([]domain.RunRecord, error) {
	if r.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}

	query, args, err := r.builder.
		Select(runColumns...).
		From(runsTable).
		OrderBy("started_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var rows []runRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}

	records := make([]domain.RunRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.record())
	}

	return records, nil
}

// Close releases the database handle.
func (r *RunLedger) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}
