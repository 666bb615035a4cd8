// Package merge folds a freshly refreshed category into the persisted dataset.
package merge

import (
	"github.com/lueurxax/aggro-radar/internal/core/domain"
)

// Result describes a merge.
type Result struct {
	Records []domain.EnrichedRecord
	Kept    int
	Removed int
	Added   int
}

// Merge drops every persisted record of category and appends fresh. Records of
// other categories keep their relative order and content. Fresh records are
// tagged with category. URLs are not deduplicated across categories.
func Merge(persisted, fresh []domain.EnrichedRecord, category string) Result {
	out := make([]domain.EnrichedRecord, 0, len(persisted)+len(fresh))
	removed := 0

	for _, r := range persisted {
		if r.Category == category {
			removed++
			continue
		}

		out = append(out, r)
	}

	kept := len(out)

	for _, r := range fresh {
		r.Category = category
		out = append(out, r)
	}

	return Result{Records: out, Kept: kept, Removed: removed, Added: len(fresh)}
}

// CountByCategory returns the number of records per category.
func CountByCategory(records []domain.EnrichedRecord) map[string]int {
	counts := make(map[string]int)
	for _, r := range records {
		counts[r.Category]++
	}

	return counts
}
