package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"TrendScanner/internal/domain"
	"TrendScanner/internal/ports"
	"TrendScanner/internal/resolve"
)

const (
	maxBriefTitle   = 140
	maxBriefSummary = 220
	maxSeedKeywords = 20

	defaultIssueReason = "24시간 내 다중 소스 언급"
)

// RunOptions bounds one pipeline invocation.
type RunOptions struct {
	Window           time.Duration
	TopN             int
	CorroborateLimit int
	Celebs           []string
	ProductTerms     []string
	// MentionWeights is the per-source mention increment policy.
	// Unknown sources count 1.
	MentionWeights map[string]int
	// Sources lists the source tags consulted this run, for the
	// report envelope.
	Sources []string
}

func (o RunOptions) weightFor(source string) int {
	if w, ok := o.MentionWeights[source]; ok && w > 0 {
		return w
	}
	return 1
}

// PipelineDeps wires collaborators and resolution stages into the run.
type PipelineDeps struct {
	Source     ports.RowSource
	Trends     ports.TrendIndex
	Repository ports.RunRepository
	Sink       ports.ReportSink
	Notifier   ports.Notifier
	Extractor  *resolve.Extractor
	Filter     *resolve.Filter
	Classifier *resolve.Classifier
	Scorer     *resolve.Scorer
	Logger     *slog.Logger
	Options    RunOptions
}

// Pipeline implements the collect, resolve, merge, score, emit
// workflow as one batch per invocation.
type Pipeline struct {
	source     ports.RowSource
	trends     ports.TrendIndex
	repository ports.RunRepository
	sink       ports.ReportSink
	notifier   ports.Notifier
	extractor  *resolve.Extractor
	filter     *resolve.Filter
	classifier *resolve.Classifier
	scorer     *resolve.Scorer
	logger     *slog.Logger
	opts       RunOptions
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		source:     deps.Source,
		trends:     deps.Trends,
		repository: deps.Repository,
		sink:       deps.Sink,
		notifier:   deps.Notifier,
		extractor:  deps.Extractor,
		filter:     deps.Filter,
		classifier: deps.Classifier,
		scorer:     deps.Scorer,
		logger:     logger,
		opts:       deps.Options,
	}
}

// runState is the per-invocation accumulation: the entity pool plus
// free-text keyword counts from rows that resolved no (brand, model).
type runState struct {
	pool       *resolve.Pool
	keywords   map[string]int
	usableRows int
	errors     []domain.SourceError
}

// Run executes one batch: seed collection, candidate resolution and
// merge, corroboration passes, trend weighting, scoring, ranking and
// emission. It aborts only when no source produced a single usable row.
func (p *Pipeline) Run(ctx context.Context, now time.Time) (domain.Report, error) {
	state := &runState{
		pool:     resolve.NewPool(),
		keywords: map[string]int{},
	}

	rows, errs := p.source.Seed(ctx, p.opts.Window)
	state.errors = append(state.errors, errs...)

	for _, row := range rows {
		p.processRow(state, row, row.Title)
	}

	if state.usableRows == 0 {
		return domain.Report{}, fmt.Errorf(
			"no usable rows from any source within %s (source errors: %d)",
			p.opts.Window, len(state.errors))
	}

	p.enrichCelebrityContext(ctx, state)
	p.corroborate(ctx, state, domain.SourceNews, "")
	p.corroborate(ctx, state, domain.SourceVideo, " 리뷰")

	ratios := p.trendRatios(ctx, state)

	report := p.buildReport(state, ratios, now)
	p.emit(ctx, report)
	return report, nil
}

// processRow folds a single row into the run state: extraction,
// validation, classification, merge. Malformed rows are skipped
// silently; extraction misses contribute nothing.
func (p *Pipeline) processRow(state *runState, row domain.RawRow, text string) {
	if !row.Usable() {
		return
	}
	state.usableRows++

	for _, cand := range p.extractor.Candidates(text) {
		if cand.Brand == "" && cand.Model == "" {
			// Free-text fallback: feeds the seed-keyword list, never
			// a key-bearing record.
			if cand.ProductName != "" {
				state.keywords[cand.ProductName]++
			}
			continue
		}

		if err := p.filter.Validate(cand); err != nil {
			continue
		}

		cand.Category, cand.Confidence = p.classifier.Apply(text, cand.Confidence)
		p.merge(state, cand, row, reasonFor(row.Source))
	}
}

func (p *Pipeline) merge(state *runState, cand domain.Candidate, row domain.RawRow, reason string) {
	state.pool.Merge(resolve.Observation{
		Candidate: cand,
		Source:    row.Source,
		Weight:    p.opts.weightFor(row.Source),
		Link:      row.Link,
		Reason:    reason,
		Brief: domain.EvidenceBrief{
			Source:  row.Source,
			URL:     row.Link,
			Title:   truncateRunes(resolve.StripTags(row.Title), maxBriefTitle),
			Summary: briefSummary(row),
		},
	})
}

// enrichCelebrityContext crosses celebrity seeds with product terms
// and mines the resulting news and blog rows for additional entities.
func (p *Pipeline) enrichCelebrityContext(ctx context.Context, state *runState) {
	if len(p.opts.Celebs) == 0 || len(p.opts.ProductTerms) == 0 {
		return
	}

	queries := make([]string, 0, len(p.opts.Celebs)*len(p.opts.ProductTerms))
	for _, celeb := range p.opts.Celebs {
		for _, term := range p.opts.ProductTerms {
			queries = append(queries, celeb+" "+term)
		}
	}

	for _, source := range []string{domain.SourceNews, domain.SourceBlog} {
		rows, err := p.source.Search(ctx, source, queries, p.opts.Window, 5)
		if err != nil {
			p.logger.Warn("celebrity enrichment failed", "source", source, "error", err)
			state.errors = append(state.errors, domain.SourceError{Source: source, Error: err.Error()})
			continue
		}
		for _, row := range rows {
			// Brand and model often sit in the body, not the headline.
			p.processRow(state, row, row.Title+" "+row.Description)
		}
	}
}

// corroborate queries one source for every pooled entity and merges
// rows whose title repeats both the brand and the model.
func (p *Pipeline) corroborate(ctx context.Context, state *runState, source, querySuffix string) {
	keys := state.pool.Keys()
	if len(keys) == 0 {
		return
	}
	if p.opts.CorroborateLimit > 0 && len(keys) > p.opts.CorroborateLimit {
		keys = keys[:p.opts.CorroborateLimit]
	}

	for _, key := range keys {
		query := key.Brand + " " + key.Model + querySuffix
		rows, err := p.source.Search(ctx, source, []string{query}, p.opts.Window, 10)
		if err != nil {
			p.logger.Warn("corroboration failed", "source", source, "error", err)
			state.errors = append(state.errors, domain.SourceError{Source: source, Error: err.Error()})
			return
		}

		rec, _ := state.pool.Lookup(key)
		for _, row := range rows {
			if !row.Usable() {
				continue
			}
			state.usableRows++
			title := resolve.StripTags(row.Title)
			if !strings.Contains(title, key.Brand) ||
				!strings.Contains(resolve.NormalizeUpper(title), key.Model) {
				continue
			}
			p.merge(state, domain.Candidate{
				Brand:      key.Brand,
				Model:      key.Model,
				Category:   rec.Category,
				Confidence: 0,
			}, row, reasonFor(row.Source))
		}
	}
}

// trendRatios asks the external trend index for search ratios of the
// pooled entity keywords. Best effort: failure records an error and
// leaves every ratio at zero.
func (p *Pipeline) trendRatios(ctx context.Context, state *runState) map[string]float64 {
	if p.trends == nil || state.pool.Len() == 0 {
		return map[string]float64{}
	}

	keys := state.pool.Keys()
	keywords := make([]string, 0, len(keys))
	for _, key := range keys {
		keywords = append(keywords, key.Brand+" "+key.Model)
	}

	ratios, err := p.trends.Ratios(ctx, keywords)
	if err != nil {
		p.logger.Warn("trend index unavailable", "error", err)
		state.errors = append(state.errors, domain.SourceError{Source: "naver_datalab", Error: err.Error()})
		return map[string]float64{}
	}
	return ratios
}

func (p *Pipeline) buildReport(state *runState, ratios map[string]float64, now time.Time) domain.Report {
	var eligible []*domain.EntityRecord
	for _, rec := range state.pool.Records() {
		if !p.scorer.Eligible(rec) {
			continue
		}
		rec.Score = p.scorer.Score(rec, ratios[rec.Key.Brand+" "+rec.Key.Model])
		eligible = append(eligible, rec)
	}

	ranked := resolve.Rank(eligible, p.opts.TopN)

	items := make([]domain.ReportItem, 0, len(ranked))
	for _, rec := range ranked {
		reason := defaultIssueReason
		if len(rec.Reasons) > 0 {
			reason = strings.Join(rec.Reasons, " / ")
		}
		items = append(items, domain.ReportItem{
			EntityKey:            rec.Key.String(),
			Brand:                rec.Key.Brand,
			ModelName:            rec.Key.Model,
			CanonicalProductName: rec.CanonicalName,
			MentionCount24h:      rec.MentionCount,
			Score:                rec.Score,
			Category:             rec.Category,
			IssueReason:          reason,
			EvidenceLinks:        rec.EvidenceLinks,
			EvidenceBriefs:       rec.Briefs,
			SourceMix:            rec.SourceMix,
		})
	}

	p.logger.Info("run resolved",
		"usable_rows", state.usableRows,
		"pool_size", state.pool.Len(),
		"emitted", len(items),
		"source_errors", len(state.errors))

	return domain.Report{
		RunID:           uuid.NewString(),
		GeneratedAt:     now.Format(time.RFC3339),
		TimeWindowHours: int(p.opts.Window / time.Hour),
		Sources:         p.opts.Sources,
		SeedKeywords:    topKeywords(state.keywords, maxSeedKeywords),
		Errors:          state.errors,
		Items:           items,
	}
}

// emit writes the document and fans it out to the optional archive and
// notifier. Downstream failures are logged, not fatal: the run already
// produced its result.
func (p *Pipeline) emit(ctx context.Context, report domain.Report) {
	if p.sink != nil {
		path, err := p.sink.Write(report)
		if err != nil {
			p.logger.Error("write report failed", "error", err)
		} else {
			p.logger.Info("report written", "path", path, "items", len(report.Items))
		}
	}
	if p.repository != nil {
		if err := p.repository.SaveRun(ctx, report); err != nil {
			p.logger.Warn("archive run failed", "error", err)
		}
	}
	if p.notifier != nil {
		if err := p.notifier.PublishReport(ctx, report); err != nil {
			p.logger.Warn("publish digest failed", "error", err)
		}
	}
}

func reasonFor(source string) string {
	switch source {
	case domain.SourceShop:
		return "네이버 쇼핑 상위 노출"
	case domain.SourceNews:
		return "네이버 뉴스 24h 언급"
	case domain.SourceBlog:
		return "네이버 블로그 언급"
	case domain.SourceVideo:
		return "유튜브 24h 리뷰/언급"
	case domain.SourceFeed:
		return "실시간 트렌드 피드 언급"
	default:
		return defaultIssueReason
	}
}

func briefSummary(row domain.RawRow) string {
	desc := resolve.StripTags(row.Description)
	if desc != "" {
		return truncateRunes(desc, maxBriefSummary)
	}
	switch row.Source {
	case domain.SourceShop:
		return "쇼핑 검색 상위 노출 상품, 가격/판매처 기준 구매 가능성 확인됨"
	case domain.SourceVideo:
		return "최근 업로드 영상에서 브랜드+모델 동시 확인"
	default:
		return "제목에서 해당 모델 언급 확인"
	}
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

func topKeywords(counts map[string]int, n int) []string {
	type kv struct {
		K string
		V int
	}
	list := make([]kv, 0, len(counts))
	for k, v := range counts {
		list = append(list, kv{k, v})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].V == list[j].V {
			return list[i].K < list[j].K
		}
		return list[i].V > list[j].V
	})
	if n > len(list) {
		n = len(list)
	}
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, list[i].K)
	}
	return out
}
