package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"testing"
	"time"

	"TrendScanner/internal/domain"
	"TrendScanner/internal/resolve"
)

type fakeSource struct {
	rows     []domain.RawRow
	errs     []domain.SourceError
	searches map[string][]domain.RawRow
	fail     map[string]error
	calls    []string
}

func (f *fakeSource) Seed(ctx context.Context, window time.Duration) ([]domain.RawRow, []domain.SourceError) {
	return f.rows, f.errs
}

func (f *fakeSource) Search(ctx context.Context, collector string, queries []string, window time.Duration, limit int) ([]domain.RawRow, error) {
	f.calls = append(f.calls, collector)
	if err := f.fail[collector]; err != nil {
		return nil, err
	}
	return f.searches[collector], nil
}

type fakeSink struct {
	last  domain.Report
	calls int
}

func (s *fakeSink) Write(rep domain.Report) (string, error) {
	s.calls++
	s.last = rep
	return "memory", nil
}

type fakeTrends struct {
	ratios map[string]float64
	err    error
}

func (t *fakeTrends) Ratios(ctx context.Context, keywords []string) (map[string]float64, error) {
	return t.ratios, t.err
}

func testDeps(src *fakeSource) PipelineDeps {
	lex := resolve.DefaultLexicon()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	rules := resolve.CategoryRules{
		"가전": {Hints: []string{"냉장고", "청소기"}, Brands: []string{"삼성", "다이슨"}},
	}
	return PipelineDeps{
		Source:     src,
		Extractor:  resolve.NewExtractor(lex, logger),
		Filter:     resolve.NewFilter(lex, logger),
		Classifier: resolve.NewClassifier(rules, lex),
		Scorer:     resolve.NewScorer(resolve.DefaultWeights(), lex),
		Logger:     logger,
		Options: RunOptions{
			Window: 24 * time.Hour,
			TopN:   10,
			MentionWeights: map[string]int{
				domain.SourceShop:  2,
				domain.SourceNews:  2,
				domain.SourceBlog:  2,
				domain.SourceVideo: 2,
				domain.SourceFeed:  1,
			},
			Sources: []string{domain.SourceShop, domain.SourceNews},
		},
	}
}

func shopRow(title, link string) domain.RawRow {
	return domain.RawRow{Title: title, Link: link, Source: domain.SourceShop, PublishedAt: time.Now()}
}

func TestRunMergesAcrossSources(t *testing.T) {
	t.Parallel()

	src := &fakeSource{rows: []domain.RawRow{
		shopRow("삼성 냉장고 RF85 특가", "https://shop.example/1"),
		{Title: "삼성 RF85 재입고 임박", Link: "https://news.example/2", Source: domain.SourceNews},
		{Title: "제목 없는 행", Link: ""}, // unusable, skipped
	}}
	sink := &fakeSink{}
	deps := testDeps(src)
	deps.Sink = sink

	now := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	rep, err := NewPipeline(deps).Run(context.Background(), now)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(rep.Items) != 1 {
		t.Fatalf("items = %d, want 1: %+v", len(rep.Items), rep.Items)
	}
	item := rep.Items[0]
	if item.EntityKey != "삼성|RF85" {
		t.Fatalf("entity key = %q", item.EntityKey)
	}
	if item.MentionCount24h != 4 {
		t.Fatalf("mention count = %d, want 2+2", item.MentionCount24h)
	}
	wantMix := map[string]int{domain.SourceShop: 1, domain.SourceNews: 1}
	if !reflect.DeepEqual(item.SourceMix, wantMix) {
		t.Fatalf("source mix = %v, want %v", item.SourceMix, wantMix)
	}
	if item.Category != "가전" {
		t.Fatalf("category = %q, want 가전", item.Category)
	}
	if item.Score < 0 || item.Score > 100 {
		t.Fatalf("score out of bounds: %v", item.Score)
	}
	if len(item.EvidenceLinks) != 2 {
		t.Fatalf("evidence links = %v", item.EvidenceLinks)
	}

	if rep.RunID == "" {
		t.Fatal("run id must be set")
	}
	if rep.GeneratedAt != now.Format(time.RFC3339) {
		t.Fatalf("generated_at = %q", rep.GeneratedAt)
	}
	if rep.TimeWindowHours != 24 {
		t.Fatalf("window hours = %d", rep.TimeWindowHours)
	}
	if len(rep.Errors) != 0 {
		t.Fatalf("unexpected source errors: %v", rep.Errors)
	}
	if sink.calls != 1 || len(sink.last.Items) != 1 {
		t.Fatalf("sink not fed: calls=%d", sink.calls)
	}
}

func TestRunFailsWithoutUsableRows(t *testing.T) {
	t.Parallel()

	src := &fakeSource{
		errs: []domain.SourceError{{Source: domain.SourceShop, Error: "http 500"}},
	}
	if _, err := NewPipeline(testDeps(src)).Run(context.Background(), time.Now()); err == nil {
		t.Fatal("want error when no source produced a usable row")
	}
}

func TestRunNoiseRowsEmitNothing(t *testing.T) {
	t.Parallel()

	src := &fakeSource{rows: []domain.RawRow{
		{Title: "정치 속보 국회 대선", Link: "https://news.example/1", Source: domain.SourceNews},
		{Title: "정치 속보 국회 대선 2신", Link: "https://news.example/2", Source: domain.SourceNews},
		{Title: "무선 청소기 추천 영상", Link: "https://blog.example/3", Source: domain.SourceBlog},
	}}

	rep, err := NewPipeline(testDeps(src)).Run(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("noise-only input must not abort the run: %v", err)
	}
	if len(rep.Items) != 0 {
		t.Fatalf("items = %+v, want none", rep.Items)
	}
	if !reflect.DeepEqual(rep.SeedKeywords, []string{"무선 청소기"}) {
		t.Fatalf("seed keywords = %v", rep.SeedKeywords)
	}
}

func TestRunSingleMentionGated(t *testing.T) {
	t.Parallel()

	src := &fakeSource{rows: []domain.RawRow{
		{Title: "다이슨 V15 신제품 공개", Link: "https://feed.example/1", Source: domain.SourceFeed},
	}}

	rep, err := NewPipeline(testDeps(src)).Run(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rep.Items) != 0 {
		t.Fatalf("one weighted mention must stay below the threshold: %+v", rep.Items)
	}
}

func TestRunCorroborationMergesMatchingTitles(t *testing.T) {
	t.Parallel()

	src := &fakeSource{
		rows: []domain.RawRow{shopRow("삼성 냉장고 RF85 특가", "https://shop.example/1")},
		searches: map[string][]domain.RawRow{
			domain.SourceNews: {
				{Title: "삼성 rf85 단독 공개", Link: "https://news.example/1", Source: domain.SourceNews},
				{Title: "다이슨 신제품 소식", Link: "https://news.example/2", Source: domain.SourceNews},
			},
		},
	}

	rep, err := NewPipeline(testDeps(src)).Run(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rep.Items) != 1 {
		t.Fatalf("items = %+v, want the corroborated entity", rep.Items)
	}
	item := rep.Items[0]
	if item.MentionCount24h != 4 {
		t.Fatalf("mention count = %d, want seed 2 plus corroboration 2", item.MentionCount24h)
	}
	if item.SourceMix[domain.SourceNews] != 1 {
		t.Fatalf("source mix = %v, want a news entry", item.SourceMix)
	}

	if !containsCall(src.calls, domain.SourceNews) || !containsCall(src.calls, domain.SourceVideo) {
		t.Fatalf("corroboration calls = %v", src.calls)
	}
}

func TestRunCorroborationFailureIsRecorded(t *testing.T) {
	t.Parallel()

	src := &fakeSource{
		rows: []domain.RawRow{
			shopRow("삼성 냉장고 RF85 특가", "https://shop.example/1"),
			{Title: "삼성 RF85 재입고", Link: "https://news.example/2", Source: domain.SourceNews},
		},
		fail: map[string]error{domain.SourceNews: errors.New("quota exceeded")},
	}

	rep, err := NewPipeline(testDeps(src)).Run(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("corroboration failure must not abort the run: %v", err)
	}
	if len(rep.Items) != 1 {
		t.Fatalf("items = %+v", rep.Items)
	}
	found := false
	for _, se := range rep.Errors {
		if se.Source == domain.SourceNews {
			found = true
		}
	}
	if !found {
		t.Fatalf("errors = %v, want the failed source recorded", rep.Errors)
	}
}

func TestRunTrendRatioRaisesScore(t *testing.T) {
	t.Parallel()

	rows := []domain.RawRow{
		shopRow("삼성 냉장고 RF85 특가", "https://shop.example/1"),
		shopRow("삼성 RF85 최저가", "https://shop.example/2"),
	}

	plain, err := NewPipeline(testDeps(&fakeSource{rows: rows})).Run(context.Background(), time.Now())
	if err != nil {
		t.Fatal(err)
	}

	deps := testDeps(&fakeSource{rows: rows})
	deps.Trends = &fakeTrends{ratios: map[string]float64{"삼성 RF85": 40}}
	boosted, err := NewPipeline(deps).Run(context.Background(), time.Now())
	if err != nil {
		t.Fatal(err)
	}

	if boosted.Items[0].Score <= plain.Items[0].Score {
		t.Fatalf("trend ratio must raise the score: %v vs %v",
			boosted.Items[0].Score, plain.Items[0].Score)
	}
}

func TestRunOrderInsensitiveTotals(t *testing.T) {
	t.Parallel()

	rows := []domain.RawRow{
		shopRow("삼성 냉장고 RF85 특가", "https://shop.example/1"),
		{Title: "삼성 RF85 재입고", Link: "https://news.example/2", Source: domain.SourceNews},
		{Title: "삼성 RF85 개봉기", Link: "https://blog.example/3", Source: domain.SourceBlog},
	}
	reversed := []domain.RawRow{rows[2], rows[1], rows[0]}

	forward, err := NewPipeline(testDeps(&fakeSource{rows: rows})).Run(context.Background(), time.Now())
	if err != nil {
		t.Fatal(err)
	}
	backward, err := NewPipeline(testDeps(&fakeSource{rows: reversed})).Run(context.Background(), time.Now())
	if err != nil {
		t.Fatal(err)
	}

	f, b := forward.Items[0], backward.Items[0]
	if f.MentionCount24h != b.MentionCount24h {
		t.Fatalf("mention count depends on row order: %d vs %d", f.MentionCount24h, b.MentionCount24h)
	}
	if !reflect.DeepEqual(f.SourceMix, b.SourceMix) {
		t.Fatalf("source mix depends on row order: %v vs %v", f.SourceMix, b.SourceMix)
	}
	if f.Score != b.Score {
		t.Fatalf("score depends on row order: %v vs %v", f.Score, b.Score)
	}
}

func TestRunCelebrityEnrichment(t *testing.T) {
	t.Parallel()

	src := &fakeSource{
		rows: []domain.RawRow{shopRow("오늘의 핫딜 모음", "https://shop.example/1")},
		searches: map[string][]domain.RawRow{
			domain.SourceBlog: {
				{
					Title:       "아이유 공항패션",
					Description: "공항에서 든 다이슨 V15 청소기까지 화제",
					Link:        "https://blog.example/1",
					Source:      domain.SourceBlog,
				},
			},
		},
	}
	deps := testDeps(src)
	deps.Options.Celebs = []string{"아이유"}
	deps.Options.ProductTerms = []string{"청소기"}

	_, err := NewPipeline(deps).Run(context.Background(), time.Now())
	if err != nil {
		t.Fatal(err)
	}

	newsCalls := 0
	for _, c := range src.calls {
		if c == domain.SourceNews {
			newsCalls++
		}
		if c == domain.SourceBlog && newsCalls == 0 {
			// enrichment queries news before blog; seeing blog first
			// would mean the pass order changed
			t.Fatalf("unexpected call order: %v", src.calls)
		}
	}
	if newsCalls == 0 {
		t.Fatalf("enrichment never queried news: %v", src.calls)
	}
}

func containsCall(calls []string, want string) bool {
	for _, c := range calls {
		if c == want {
			return true
		}
	}
	return false
}
