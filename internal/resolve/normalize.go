package resolve

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	tagExpr        = regexp.MustCompile(`<[^>]+>`)
	bracketExpr    = regexp.MustCompile(`\[[^\]]*\]`)
	parenExpr      = regexp.MustCompile(`\([^)]*\)`)
	charsetExpr    = regexp.MustCompile(`[^0-9A-Za-z가-힣\s\-\+]`)
	whitespaceExpr = regexp.MustCompile(`\s+`)
)

// StripTags removes HTML markup and decodes entities. Vendor APIs wrap
// matched terms in <b> tags and escape the rest.
func StripTags(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(tagExpr.ReplaceAllString(s, ""))
	}
	return strings.TrimSpace(doc.Text())
}

// Normalize cleans a noisy title into matchable text. Steps, in order:
// markup stripped, bracketed and parenthetical spans removed (channel
// and promo noise), every character outside digits, ASCII letters,
// Hangul syllables, whitespace, hyphen and plus replaced with a space,
// whitespace collapsed. Idempotent: Normalize(Normalize(x)) == Normalize(x).
func Normalize(s string) string {
	s = StripTags(s)
	s = bracketExpr.ReplaceAllString(s, " ")
	s = parenExpr.ReplaceAllString(s, " ")
	s = charsetExpr.ReplaceAllString(s, " ")
	s = whitespaceExpr.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// NormalizeUpper is Normalize with ASCII letters upper-cased, the form
// the model token rules run against.
func NormalizeUpper(s string) string {
	return strings.ToUpper(Normalize(s))
}
