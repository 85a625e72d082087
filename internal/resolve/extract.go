package resolve

import (
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"TrendScanner/internal/domain"
)

// ModelRule is one token-shape matcher in the priority list. Rules are
// evaluated in order and the first rule producing a valid token wins;
// there is no ranking by specificity.
type ModelRule struct {
	Name string
	expr *regexp.Regexp
}

// Match returns every token of this shape found in the upper-cased text.
func (r ModelRule) Match(text string) []string {
	return r.expr.FindAllString(text, -1)
}

// modelRules is the ordered contract for model token extraction:
// device codes first, alphanumeric codes second, digit-letter shade and
// size codes last.
var modelRules = []ModelRule{
	{Name: "device-code", expr: regexp.MustCompile(`\b[A-Z]{1,4}-?[A-Z0-9]{2,8}\b`)},
	{Name: "alnum-code", expr: regexp.MustCompile(`\b[A-Z]{1,3}[0-9]{2,5}[A-Z0-9+\-]*\b`)},
	{Name: "digit-letter", expr: regexp.MustCompile(`\b[0-9]{2,4}[A-Z]{1,3}\b`)},
}

var (
	shadeExpr = regexp.MustCompile(`[0-9]{2}[NC][0-9]`)
	spfExpr   = regexp.MustCompile(`SPF\s?[0-9]{2}`)
)

// Base confidences per candidate shape; the classifier boost is added
// on top, scaled, and the sum never exceeds maxConfidence.
const (
	confBrandAndModel = 0.6
	confModelOnly     = 0.45
	confBrandOnly     = 0.35
	confFreeText      = 0.3
	boostScale        = 0.2
	maxConfidence     = 0.95
)

// maxModelsPerRow caps how many model tokens a single title contributes.
const maxModelsPerRow = 2

// Extractor proposes (brand, model) candidates from normalized text.
type Extractor struct {
	lex Lexicon
	log *slog.Logger
}

// NewExtractor builds an extractor over the given lexicon.
func NewExtractor(lex Lexicon, log *slog.Logger) *Extractor {
	if log == nil {
		log = slog.Default()
	}
	return &Extractor{lex: lex, log: log}
}

// DetectBrand returns the first lexicon brand found as a substring of
// the normalized text, or "". First match in lexicon order is the
// contract, not longest match.
func (e *Extractor) DetectBrand(text string) string {
	t := Normalize(text)
	for _, b := range e.lex.Brands {
		if strings.Contains(t, b) {
			return b
		}
	}
	return ""
}

// ExtractModels runs the rule priority list against the upper-cased
// normalized text and returns up to maxModelsPerRow tokens from the
// first rule that yields any valid token. Tokens shorter than three
// runes or on the generic stoplist are discarded, which moves
// evaluation on to the next rule.
func (e *Extractor) ExtractModels(text string) []string {
	t := NormalizeUpper(text)
	for _, rule := range modelRules {
		var kept []string
		for _, tok := range rule.Match(t) {
			if !e.validToken(tok) {
				continue
			}
			if containsString(kept, tok) {
				continue
			}
			kept = append(kept, tok)
			if len(kept) == maxModelsPerRow {
				break
			}
		}
		if len(kept) > 0 {
			e.log.Debug("model rule matched", "rule", rule.Name, "tokens", kept)
			return kept
		}
	}
	return nil
}

func (e *Extractor) validToken(tok string) bool {
	if utf8.RuneCountInString(tok) < 3 {
		return false
	}
	if _, stop := e.lex.TokenStop[strings.ToLower(tok)]; stop {
		return false
	}
	return true
}

// BeautyModel recovers a shade, SPF or line token from cosmetics
// listings whose titles carry no model code. Returns "" when nothing
// matches.
func (e *Extractor) BeautyModel(text string) string {
	t := NormalizeUpper(text)
	if m := shadeExpr.FindString(t); m != "" {
		return m
	}
	if m := spfExpr.FindString(t); m != "" {
		return strings.ReplaceAll(m, " ", "")
	}
	for _, line := range e.lex.BeautyLines {
		if strings.Contains(t, line) {
			return line
		}
	}
	return ""
}

func (e *Extractor) hasBeautyHint(text string) bool {
	for _, h := range e.lex.BeautyHints {
		if strings.Contains(text, h) {
			return true
		}
	}
	return false
}

// Candidates resolves one row's text into candidate proposals: the
// cross of detected models with the detected brand, a brand-only or
// model-only variant when one side is missing, or a free-text item
// name when neither was found.
func (e *Extractor) Candidates(text string) []domain.Candidate {
	brand := e.DetectBrand(text)
	models := e.ExtractModels(text)
	if len(models) == 0 && brand != "" && e.hasBeautyHint(text) {
		if m := e.BeautyModel(text); m != "" {
			models = []string{m}
		}
	}

	display := Normalize(text)

	switch {
	case brand != "" && len(models) > 0:
		out := make([]domain.Candidate, 0, len(models))
		for _, m := range models {
			out = append(out, domain.Candidate{
				Brand:       brand,
				Model:       m,
				ProductName: display,
				Confidence:  confBrandAndModel,
			})
		}
		return out
	case len(models) > 0:
		out := make([]domain.Candidate, 0, len(models))
		for _, m := range models {
			out = append(out, domain.Candidate{
				Model:       m,
				ProductName: display,
				Confidence:  confModelOnly,
			})
		}
		return out
	case brand != "":
		return []domain.Candidate{{
			Brand:       brand,
			ProductName: display,
			Confidence:  confBrandOnly,
		}}
	}

	if name := e.ChooseItemName(text); name != "" {
		return []domain.Candidate{{
			ProductName: name,
			Confidence:  confFreeText,
		}}
	}
	return nil
}

var digitOnlyExpr = regexp.MustCompile(`^[0-9]+[년월일시분]?$`)

// ChooseItemName picks a free-text product name from a title that
// produced no brand or model: a product-hint 1-2 gram first, then a
// product-suffix compound, then a single product-looking token.
func (e *Extractor) ChooseItemName(title string) string {
	raw := Normalize(title)
	toks := e.tokenCandidates(raw)
	if len(toks) == 0 {
		return ""
	}

	parts := strings.Fields(raw)

	for _, hint := range e.lex.ProductHints {
		if !strings.Contains(raw, hint) {
			continue
		}
		for i, p := range parts {
			if !strings.Contains(p, hint) {
				continue
			}
			if i > 0 && utf8.RuneCountInString(parts[i-1]) <= 8 {
				cand := parts[i-1] + " " + p
				if !e.isClothing(cand) {
					return cand
				}
			}
			return p
		}
	}

	for i, p := range parts {
		if !e.hasProductSuffix(p) {
			continue
		}
		if i > 0 && utf8.RuneCountInString(parts[i-1]) <= 8 {
			cand := parts[i-1] + " " + p
			if !e.isClothing(cand) {
				return cand
			}
		}
		return p
	}

	for _, t := range toks {
		if e.isClothing(t) || digitOnlyExpr.MatchString(t) {
			continue
		}
		if e.hasPersonNoise(t) {
			continue
		}
		for _, h := range e.lex.ProductHints {
			if strings.Contains(t, h) {
				return t
			}
		}
	}
	return ""
}

func (e *Extractor) tokenCandidates(normalized string) []string {
	var out []string
	for _, t := range strings.Fields(normalized) {
		n := utf8.RuneCountInString(t)
		if n < 2 || n > 16 {
			continue
		}
		if _, stop := e.lex.Stopwords[t]; stop {
			continue
		}
		switch strings.ToLower(t) {
		case "tv", "th", "vs", "kr", "ko":
			continue
		}
		if e.isClothing(t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func (e *Extractor) isClothing(s string) bool {
	for _, c := range e.lex.ClothingBlock {
		if strings.Contains(s, c) {
			return true
		}
	}
	return false
}

func (e *Extractor) hasProductSuffix(s string) bool {
	for _, suf := range e.lex.ProductSuffixes {
		if strings.HasSuffix(s, suf) || strings.Contains(s, suf) {
			return true
		}
	}
	return false
}

func (e *Extractor) hasPersonNoise(s string) bool {
	for _, h := range e.lex.PersonNoiseHints {
		if strings.Contains(s, h) {
			return true
		}
	}
	return false
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
