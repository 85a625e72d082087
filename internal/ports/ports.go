package ports

import (
	"context"
	"time"

	"TrendScanner/internal/domain"
)

// RowSource produces raw rows from the configured collectors. Seed runs
// every configured collection job; Search issues ad-hoc keyword queries
// against one collector, used by the corroboration passes. Per-source
// failures surface as SourceErrors, never as a hard error: the run
// aborts only when no source produced any usable row at all.
type RowSource interface {
	Seed(ctx context.Context, window time.Duration) ([]domain.RawRow, []domain.SourceError)
	Search(ctx context.Context, collector string, queries []string, window time.Duration, limit int) ([]domain.RawRow, error)
}

// TrendIndex returns relative external search-interest ratios for
// keywords, used as a score weighting. Best effort; an error leaves
// all ratios at zero.
type TrendIndex interface {
	Ratios(ctx context.Context, keywords []string) (map[string]float64, error)
}

// RunRepository archives an emitted report for audit and history.
type RunRepository interface {
	SaveRun(ctx context.Context, report domain.Report) error
}

// ReportSink writes the final run document and returns its location.
type ReportSink interface {
	Write(report domain.Report) (string, error)
}

// Notifier publishes a human-readable digest of the ranked output.
type Notifier interface {
	PublishReport(ctx context.Context, report domain.Report) error
}

// Scheduler controls when runs execute in recurring mode.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
