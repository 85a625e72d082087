package resolve

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultCategory is assigned on ties and when no rule scores at all.
const DefaultCategory = "기타"

// Per-match weights of the classifier and its confidence boost.
const (
	hintPoints  = 2
	brandPoints = 1

	hintBoost   = 0.5
	brandBoost  = 0.4
	suffixBoost = 0.5
	maxBoost    = 1.5
)

// CategoryRule is one category's matching vocabulary from the external
// rules document.
type CategoryRule struct {
	Hints  []string `yaml:"hints"`
	Brands []string `yaml:"brands"`
}

// CategoryRules maps category name to its rule.
type CategoryRules map[string]CategoryRule

// LoadCategoryRules reads the externally supplied rules document. A
// missing or unparsable file yields an empty rule set and an error the
// caller may log; the run itself continues.
func LoadCategoryRules(path string) (CategoryRules, error) {
	if path == "" {
		return CategoryRules{}, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return CategoryRules{}, fmt.Errorf("read category rules %s: %w", path, err)
	}
	var rules CategoryRules
	if err := yaml.Unmarshal(raw, &rules); err != nil {
		return CategoryRules{}, fmt.Errorf("parse category rules %s: %w", path, err)
	}
	if rules == nil {
		rules = CategoryRules{}
	}
	return rules, nil
}

// Classifier assigns categories and a bounded confidence boost based
// on substring matches against the rules document.
type Classifier struct {
	rules CategoryRules
	lex   Lexicon
}

// NewClassifier builds a classifier; rules may be empty, in which case
// every text lands in DefaultCategory.
func NewClassifier(rules CategoryRules, lex Lexicon) *Classifier {
	if rules == nil {
		rules = CategoryRules{}
	}
	return &Classifier{rules: rules, lex: lex}
}

// Classify scores the normalized text against every category: +2 per
// matching hint, +1 per matching brand. The strictly highest score
// wins; ties and zero scores resolve to DefaultCategory. The returned
// int is the winning score (0 for the default).
func (c *Classifier) Classify(text string) (string, int) {
	t := Normalize(text)

	best := DefaultCategory
	bestScore := 0
	tied := false
	for name, rule := range c.rules {
		score := 0
		for _, h := range rule.Hints {
			if h != "" && strings.Contains(t, h) {
				score += hintPoints
			}
		}
		for _, b := range rule.Brands {
			if b != "" && strings.Contains(t, b) {
				score += brandPoints
			}
		}
		switch {
		case score > bestScore:
			best, bestScore, tied = name, score, false
		case score == bestScore && score > 0:
			tied = true
		}
	}
	if bestScore == 0 || tied {
		return DefaultCategory, 0
	}
	return best, bestScore
}

// Boost computes the bounded match-confidence boost: 0.5 per hint
// match, 0.4 per brand match and 0.5 per generic product-suffix match,
// capped at maxBoost. Callers scale it down before adding it to a
// candidate's base confidence.
func (c *Classifier) Boost(text string) float64 {
	t := Normalize(text)

	boost := 0.0
	for _, rule := range c.rules {
		for _, h := range rule.Hints {
			if h != "" && strings.Contains(t, h) {
				boost += hintBoost
			}
		}
		for _, b := range rule.Brands {
			if b != "" && strings.Contains(t, b) {
				boost += brandBoost
			}
		}
	}
	for _, suf := range c.lex.ProductSuffixes {
		if strings.Contains(t, suf) {
			boost += suffixBoost
		}
	}
	if boost > maxBoost {
		boost = maxBoost
	}
	return boost
}

// Apply stamps a candidate with its category and folds the scaled
// boost into its confidence, never exceeding maxConfidence.
func (c *Classifier) Apply(text string, confidence float64) (string, float64) {
	category, _ := c.Classify(text)
	confidence += c.Boost(text) * boostScale
	if confidence > maxConfidence {
		confidence = maxConfidence
	}
	return category, confidence
}
