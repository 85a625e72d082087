package resolve

import (
	"sort"

	"TrendScanner/internal/domain"
)

// Rank sorts records by (score, mention count) descending and
// truncates to topN. The input must already be in pool insertion
// order: full ties keep that order, which makes the output
// deterministic for identical inputs processed in identical row order.
func Rank(records []*domain.EntityRecord, topN int) []*domain.EntityRecord {
	ranked := make([]*domain.EntityRecord, len(records))
	copy(ranked, records)

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].MentionCount > ranked[j].MentionCount
	})

	if topN > 0 && len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}
