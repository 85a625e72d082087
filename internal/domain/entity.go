package domain

import "time"

// Source tags for raw rows. Collectors stamp every row with one of these.
const (
	SourceShop  = "naver_shop"
	SourceNews  = "naver_news"
	SourceBlog  = "naver_blog"
	SourceVideo = "youtube"
	SourceFeed  = "rss"
)

// RawRow is a single noisy observation handed over by a collector.
// Rows are immutable once produced and consumed exactly once per run.
type RawRow struct {
	Title       string
	Link        string
	Description string
	PublishedAt time.Time
	Source      string
}

// Usable reports whether the row carries enough data to process.
// Rows failing this are skipped silently, not counted as errors.
func (r RawRow) Usable() bool {
	return r.Title != "" && r.Link != ""
}

// Candidate is a transient (brand, model) proposal produced per row.
// It exists only while the row is processed and is never persisted.
type Candidate struct {
	Brand       string
	Model       string
	ProductName string
	Confidence  float64
	Category    string
}

// EntityKey identifies a real-world product across mentions.
// Identity is exact string equality on the normalized brand and the
// upper-cased model; there is no fuzzy fallback.
type EntityKey struct {
	Brand string
	Model string
}

// NewEntityKey builds a key from a candidate pair. Both fields must be
// non-empty for the key to be valid.
func NewEntityKey(brand, model string) (EntityKey, bool) {
	if brand == "" || model == "" {
		return EntityKey{}, false
	}
	return EntityKey{Brand: brand, Model: model}, true
}

// String renders the composite identifier used in reports and storage.
func (k EntityKey) String() string {
	return k.Brand + "|" + k.Model
}

// EvidenceBrief is a short human-readable record justifying why an
// entity was surfaced.
type EvidenceBrief struct {
	Source  string `json:"source"`
	URL     string `json:"url"`
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

// EntityRecord is the durable per-key aggregate built by merging
// validated candidates across all sources within one run.
type EntityRecord struct {
	Key           EntityKey
	CanonicalName string
	MentionCount  int
	SourceMix     map[string]int
	EvidenceLinks []string
	Reasons       []string
	Briefs        []EvidenceBrief
	Category      string
	Score         float64
}

// SourceError records a failed collector without aborting the run.
type SourceError struct {
	Source string `json:"source"`
	Error  string `json:"error"`
}

// ReportItem is the per-entity shape of the output document.
type ReportItem struct {
	EntityKey            string          `json:"entity_key"`
	Brand                string          `json:"brand"`
	ModelName            string          `json:"model_name"`
	CanonicalProductName string          `json:"canonical_product_name"`
	MentionCount24h      int             `json:"mention_count_24h"`
	Score                float64         `json:"score"`
	Category             string          `json:"category"`
	IssueReason          string          `json:"issue_reason"`
	EvidenceLinks        []string        `json:"evidence_links"`
	EvidenceBriefs       []EvidenceBrief `json:"evidence_briefs,omitempty"`
	SourceMix            map[string]int  `json:"source_mix"`
}

// Report is the run-level envelope written at the end of a run.
type Report struct {
	RunID           string        `json:"run_id"`
	GeneratedAt     string        `json:"generated_at"`
	TimeWindowHours int           `json:"time_window_hours"`
	Sources         []string      `json:"sources"`
	SeedKeywords    []string      `json:"seed_keywords,omitempty"`
	Errors          []SourceError `json:"errors,omitempty"`
	Items           []ReportItem  `json:"items"`
}
