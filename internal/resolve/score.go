package resolve

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"TrendScanner/internal/domain"
)

// MinMentions is the emission threshold: records mentioned fewer times
// than this never appear in the output.
const MinMentions = 2

// likelihoodFloor is a hard gate: records whose product likelihood
// falls below it are excluded regardless of mention count.
const likelihoodFloor = -0.3

// Weights is the tunable composite-score policy. The defaults mirror
// the collector this scorer replaced; adjust them in config, not here.
type Weights struct {
	Base       float64 `yaml:"base"`
	Mention    float64 `yaml:"mention"`
	Diversity  float64 `yaml:"diversity"`
	Quality    float64 `yaml:"quality"`
	Trend      float64 `yaml:"trend"`
	Likelihood float64 `yaml:"likelihood"`
}

// DefaultWeights returns the shipped scoring policy.
func DefaultWeights() Weights {
	return Weights{
		Base:       45,
		Mention:    7,
		Diversity:  5,
		Quality:    8,
		Trend:      0.25,
		Likelihood: 12,
	}
}

var shortAlphaExpr = regexp.MustCompile(`^[A-Za-z]{1,2}$`)

// Scorer computes the bounded composite score for merged records.
type Scorer struct {
	w   Weights
	lex Lexicon
}

// NewScorer builds a scorer with the given policy.
func NewScorer(w Weights, lex Lexicon) *Scorer {
	return &Scorer{w: w, lex: lex}
}

// Likelihood is the signed product-vs-noise adjustment for a display
// name: +0.7 for a product-category hint, -0.5 for a person or news
// hint, -0.7 for a bare 1-2 letter token, -0.8 when nearly empty.
func (s *Scorer) Likelihood(name string) float64 {
	score := 0.0
	for _, h := range s.lex.ProductHints {
		if strings.Contains(name, h) {
			score += 0.7
			break
		}
	}
	for _, h := range s.lex.PersonNoiseHints {
		if strings.Contains(name, h) {
			score -= 0.5
			break
		}
	}
	if shortAlphaExpr.MatchString(name) {
		score -= 0.7
	}
	if utf8.RuneCountInString(name) <= 1 {
		score -= 0.8
	}
	return score
}

// Eligible applies the two hard gates: the mention threshold and the
// likelihood floor. Gated records are dropped, not down-scored.
func (s *Scorer) Eligible(rec *domain.EntityRecord) bool {
	if rec.MentionCount < MinMentions {
		return false
	}
	return s.Likelihood(rec.CanonicalName) >= likelihoodFloor
}

// Score computes the composite score for a record, clamped to [0,100]
// and rounded to one decimal. trendRatio is the external search-trend
// ratio for the entity's keyword, zero when unavailable.
func (s *Scorer) Score(rec *domain.EntityRecord, trendRatio float64) float64 {
	v := s.w.Base +
		float64(rec.MentionCount)*s.w.Mention +
		float64(len(rec.SourceMix))*s.w.Diversity +
		ModelQuality(rec.Key.Model)*s.w.Quality +
		trendRatio*s.w.Trend +
		s.Likelihood(rec.CanonicalName)*s.w.Likelihood

	if v < 0 {
		v = 0
	}
	if v > 100 {
		v = 100
	}
	return math.Round(v*10) / 10
}
