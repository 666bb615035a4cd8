package dedup

import (
	"github.com/rs/zerolog"

	"github.com/lueurxax/aggro-radar/internal/core/domain"
)

// Log key constants for deduplication.
const (
	logKeySkippedKey = "skipped_key"
)

// Unique keeps the first occurrence of each key and stops once maxItems items are kept.
//
// This generic implementation works with any type implementing domain.Keyed,
// so every source adapter and the cross-source pass share it.
func Unique[T domain.Keyed](items []T, maxItems int, logger *zerolog.Logger) []T {
	return UniqueFull(items, maxItems, logger).Items
}

// Result contains the result of deduplication with metadata.
type Result[T domain.Keyed] struct {
	// Items contains the deduplicated items.
	Items []T

	// DroppedCount is the number of items removed as duplicates or malformed.
	DroppedCount int
}

// UniqueFull performs deduplication and returns detailed results.
// Items left over after the cap is reached are not counted as dropped.
func UniqueFull[T domain.Keyed](items []T, maxItems int, logger *zerolog.Logger) Result[T] {
	set := NewSet[T](maxItems, logger)

	for _, item := range items {
		if set.Full() {
			break
		}

		set.Add(item)
	}

	return Result[T]{Items: set.Items(), DroppedCount: set.Dropped()}
}
