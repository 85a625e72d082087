package collector

import (
	"context"
	"log/slog"
	"time"

	"TrendScanner/internal/config"
	"TrendScanner/internal/domain"
	"TrendScanner/internal/ports"
	"TrendScanner/internal/scanner"
)

// Source implements ports.RowSource over registered collectors and the
// configured seed jobs. A failing collector is recorded and skipped;
// only the pipeline decides whether the run can proceed.
type Source struct {
	registry *scanner.Registry
	jobs     []config.SourceJobConfig
	logger   *slog.Logger
}

var _ ports.RowSource = (*Source)(nil)

// NewSource wires the collector registry with config-defined jobs.
func NewSource(reg *scanner.Registry, jobs []config.SourceJobConfig, log *slog.Logger) *Source {
	if log == nil {
		log = slog.Default()
	}
	return &Source{registry: reg, jobs: jobs, logger: log}
}

// Seed executes every configured collection job and aggregates rows,
// capturing per-source failures instead of aborting.
func (s *Source) Seed(ctx context.Context, window time.Duration) ([]domain.RawRow, []domain.SourceError) {
	var rows []domain.RawRow
	var errs []domain.SourceError

	for _, job := range s.jobs {
		strategy, err := s.registry.Resolve(job.Collector)
		if err != nil {
			errs = append(errs, domain.SourceError{Source: job.Collector, Error: err.Error()})
			continue
		}

		req := scanner.Request{Window: window, Queries: job.Queries, Limit: job.Limit}
		collected, err := strategy.Collect(ctx, req)
		if err != nil {
			s.logger.Warn("collector failed", "collector", job.Collector, "error", err)
			errs = append(errs, domain.SourceError{Source: strategy.Source(), Error: err.Error()})
		}
		s.logger.Debug("collector produced rows", "collector", job.Collector, "count", len(collected))
		rows = append(rows, collected...)
	}

	s.logger.Debug("seed done", "jobs", len(s.jobs), "total_rows", len(rows), "errors", len(errs))
	return rows, errs
}

// Search runs ad-hoc queries against one collector. Used by the
// corroboration and enrichment passes.
func (s *Source) Search(ctx context.Context, collector string, queries []string, window time.Duration, limit int) ([]domain.RawRow, error) {
	strategy, err := s.registry.Resolve(collector)
	if err != nil {
		return nil, err
	}
	return strategy.Collect(ctx, scanner.Request{Window: window, Queries: queries, Limit: limit})
}
