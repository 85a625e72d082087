package resolve

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"TrendScanner/internal/domain"
)

// qualityThreshold is the minimum model quality a key-bearing candidate
// must reach to survive validation.
const qualityThreshold = 0.55

// Filter rejects low-quality and noise-matching candidates. Rules run
// in a fixed order and short-circuit: the first failing rule decides.
// Exact-vocabulary lookups precede the shape rules, so their rejection
// labels stay reachable for every listed token.
type Filter struct {
	lex Lexicon
	log *slog.Logger
}

// NewFilter builds a validation filter over the given lexicon.
func NewFilter(lex Lexicon, log *slog.Logger) *Filter {
	if log == nil {
		log = slog.Default()
	}
	return &Filter{lex: lex, log: log}
}

// Validate returns nil when the candidate may be merged under its
// entity key, or an error naming the rule that rejected it. Free-text
// fallback candidates (no brand, no model) are not passed through
// here; they never become key-bearing records.
func (f *Filter) Validate(c domain.Candidate) error {
	err := f.check(c)
	if err != nil {
		f.log.Debug("candidate rejected",
			"brand", c.Brand, "model", c.Model, "rule", err.Error())
	}
	return err
}

func (f *Filter) check(c domain.Candidate) error {
	if c.Brand == "" || c.Model == "" {
		return fmt.Errorf("missing key field")
	}
	if f.lex.containsNoise(c.Brand) || f.lex.containsNoise(c.Model) {
		return fmt.Errorf("noise vocabulary")
	}
	if isDigits(c.Model) {
		return fmt.Errorf("purely numeric model")
	}
	if c.Model == strings.ToUpper(c.Brand) {
		return fmt.Errorf("model equals brand")
	}
	// Exact-vocabulary rules run before the shape rule so a listed
	// token reports its own rejection, not the generic alpha-line one.
	if _, stop := f.lex.ModelStop[c.Model]; stop {
		return fmt.Errorf("brand-like token")
	}
	if _, deny := f.lex.ModelDeny[c.Model]; deny {
		return fmt.Errorf("deny-listed model")
	}
	if _, generic := f.lex.GenericModels[c.Model]; generic {
		return fmt.Errorf("generic tier token")
	}
	if isAlphaLine(c.Model) {
		return fmt.Errorf("alpha line label")
	}
	if ModelQuality(c.Model) < qualityThreshold {
		return fmt.Errorf("model quality below %.2f", qualityThreshold)
	}
	return nil
}

// ModelQuality scores how model-like a token is: 0.9 when it mixes
// letters and digits, 0.6 for a digit-bearing token of length >= 4,
// 0.3 otherwise, 0 for empty.
func ModelQuality(model string) float64 {
	if model == "" {
		return 0
	}
	var hasAlpha, hasDigit bool
	for _, r := range model {
		switch {
		case unicode.IsLetter(r):
			hasAlpha = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	switch {
	case hasAlpha && hasDigit:
		return 0.9
	case hasDigit && utf8.RuneCountInString(model) >= 4:
		return 0.6
	default:
		return 0.3
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// isAlphaLine reports pure-alphabetic tokens of length 2-6, which are
// almost always product line labels rather than concrete models.
func isAlphaLine(s string) bool {
	n := utf8.RuneCountInString(s)
	if n < 2 || n > 6 {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
