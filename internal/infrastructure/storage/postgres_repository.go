package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"TrendScanner/internal/domain"
	"TrendScanner/internal/ports"
)

// PostgresRepository archives emitted runs and their entities into
// Postgres for history and audit. The archive is optional; the
// pipeline works without it.
type PostgresRepository struct {
	db *sql.DB
	sb sq.StatementBuilderType
}

var _ ports.RunRepository = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// SaveRun inserts the run envelope and upserts every emitted entity.
func (r *PostgresRepository) SaveRun(ctx context.Context, report domain.Report) error {
	if r.db == nil {
		return nil
	}

	query, args, err := r.sb.
		Insert("trend_runs").
		Columns("run_id", "generated_at", "window_hours", "sources", "item_count").
		Values(report.RunID, report.GeneratedAt, report.TimeWindowHours,
			pq.StringArray(report.Sources), len(report.Items)).
		Suffix("ON CONFLICT (run_id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build run insert: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, item := range report.Items {
		if err := r.saveItem(ctx, report.RunID, item); err != nil {
			return fmt.Errorf("entity %s: %w", item.EntityKey, err)
		}
	}
	return nil
}

func (r *PostgresRepository) saveItem(ctx context.Context, runID string, item domain.ReportItem) error {
	mix, err := json.Marshal(item.SourceMix)
	if err != nil {
		return fmt.Errorf("marshal source mix: %w", err)
	}

	query, args, err := r.sb.
		Insert("trend_entities").
		Columns("run_id", "entity_key", "brand", "model_name",
			"canonical_name", "mention_count", "score", "category",
			"issue_reason", "evidence_links", "source_mix").
		Values(runID, item.EntityKey, item.Brand, item.ModelName,
			item.CanonicalProductName, item.MentionCount24h, item.Score,
			item.Category, item.IssueReason,
			pq.StringArray(item.EvidenceLinks), mix).
		Suffix(`ON CONFLICT (run_id, entity_key) DO UPDATE
              SET mention_count = EXCLUDED.mention_count,
                  score = EXCLUDED.score,
                  issue_reason = EXCLUDED.issue_reason,
                  evidence_links = EXCLUDED.evidence_links,
                  source_mix = EXCLUDED.source_mix`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build entity upsert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert entity: %w", err)
	}
	return nil
}
