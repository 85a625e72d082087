package resolve

import (
	"math"
	"testing"

	"TrendScanner/internal/domain"
)

func record(brand, model, name string, mentions int, mix map[string]int) *domain.EntityRecord {
	return &domain.EntityRecord{
		Key:           domain.EntityKey{Brand: brand, Model: model},
		CanonicalName: name,
		MentionCount:  mentions,
		SourceMix:     mix,
	}
}

func TestLikelihood(t *testing.T) {
	t.Parallel()

	s := NewScorer(DefaultWeights(), DefaultLexicon())

	cases := []struct {
		name string
		in   string
		want float64
	}{
		{"product hint", "삼성 무선 청소기", 0.7},
		{"person noise", "김 기자 단독 보도", -0.5},
		{"hint and noise cancel partially", "청소기 들고 나온 선수", 0.2},
		{"short alpha token", "XP", -0.7},
		{"single rune", "가", -0.8},
		{"neutral", "삼성 RF85", 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := s.Likelihood(tc.in)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("Likelihood(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestEligible(t *testing.T) {
	t.Parallel()

	s := NewScorer(DefaultWeights(), DefaultLexicon())

	if s.Eligible(record("삼성", "RF85", "삼성 냉장고 RF85", 1, nil)) {
		t.Fatal("single mention must not be eligible")
	}
	if !s.Eligible(record("삼성", "RF85", "삼성 냉장고 RF85", 2, nil)) {
		t.Fatal("two mentions must be eligible")
	}
	if s.Eligible(record("삼성", "RF85", "유명 기자 추천", 9, nil)) {
		t.Fatal("likelihood floor must gate regardless of mentions")
	}
}

func TestScore(t *testing.T) {
	t.Parallel()

	s := NewScorer(DefaultWeights(), DefaultLexicon())

	t.Run("composite value", func(t *testing.T) {
		rec := record("삼성", "RF85", "삼성 RF85 출시",
			4, map[string]int{domain.SourceShop: 1, domain.SourceNews: 1})
		// 45 + 4*7 + 2*5 + 0.9*8 = 90.2
		if got := s.Score(rec, 0); got != 90.2 {
			t.Fatalf("score = %v, want 90.2", got)
		}
	})

	t.Run("trend ratio contributes", func(t *testing.T) {
		rec := record("삼성", "RF85", "삼성 RF85 출시",
			2, map[string]int{domain.SourceShop: 1})
		without := s.Score(rec, 0)
		with := s.Score(rec, 40)
		if math.Abs((with-without)-10) > 1e-9 {
			t.Fatalf("trend 40 moved score from %v to %v, want +10", without, with)
		}
	})

	t.Run("clamped to 100", func(t *testing.T) {
		rec := record("삼성", "RF85", "삼성 무선 청소기 RF85",
			50, map[string]int{domain.SourceShop: 25, domain.SourceNews: 25})
		if got := s.Score(rec, 100); got != 100 {
			t.Fatalf("score = %v, want clamp at 100", got)
		}
	})

	t.Run("never negative", func(t *testing.T) {
		w := Weights{Base: 0, Likelihood: 12}
		rec := record("기", "자", "가", 0, nil)
		if got := NewScorer(w, DefaultLexicon()).Score(rec, 0); got != 0 {
			t.Fatalf("score = %v, want clamp at 0", got)
		}
	})
}

func TestRank(t *testing.T) {
	t.Parallel()

	a := record("삼성", "RF85", "삼성 RF85", 4, nil)
	a.Score = 92.5
	b := record("다이슨", "V15", "다이슨 V15", 6, nil)
	b.Score = 88.1
	c := record("LG", "A9S", "LG A9S", 3, nil)
	c.Score = 88.1
	d := record("애플", "M4PRO", "애플 M4PRO", 2, nil)
	d.Score = 70

	ranked := Rank([]*domain.EntityRecord{d, c, b, a}, 3)
	if len(ranked) != 3 {
		t.Fatalf("ranked = %d records, want 3", len(ranked))
	}
	if ranked[0] != a {
		t.Fatalf("top record = %s, want highest score", ranked[0].Key)
	}
	if ranked[1] != b || ranked[2] != c {
		t.Fatalf("score tie must order by mentions: got %s then %s",
			ranked[1].Key, ranked[2].Key)
	}
}

func TestRankStableOnFullTie(t *testing.T) {
	t.Parallel()

	a := record("삼성", "RF85", "삼성 RF85", 4, nil)
	a.Score = 80
	b := record("다이슨", "V15", "다이슨 V15", 4, nil)
	b.Score = 80

	ranked := Rank([]*domain.EntityRecord{a, b}, 0)
	if ranked[0] != a || ranked[1] != b {
		t.Fatal("full tie must keep input order")
	}
}
