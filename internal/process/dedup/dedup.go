package dedup

import (
	"github.com/rs/zerolog"

	"github.com/lueurxax/aggro-radar/internal/core/domain"
)

// Set keeps the first occurrence of every key in arrival order and stops
// accepting items once max is reached. A max of zero or less means no cap.
type Set[T domain.Keyed] struct {
	max     int
	seen    map[string]struct{}
	items   []T
	dropped int
	logger  *zerolog.Logger
}

// NewSet creates an empty Set.
func NewSet[T domain.Keyed](maxItems int, logger *zerolog.Logger) *Set[T] {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &Set[T]{
		max:    maxItems,
		seen:   make(map[string]struct{}),
		logger: logger,
	}
}

// Add appends item unless its key was already seen, the key is empty or the set is full.
// It reports whether the item was kept.
func (s *Set[T]) Add(item T) bool {
	if s.Full() {
		return false
	}

	key := item.DedupKey()
	if key == "" {
		s.dropped++
		s.logger.Debug().Msg("Skipping record without url and title")

		return false
	}

	if _, ok := s.seen[key]; ok {
		s.dropped++
		s.logger.Debug().Str(logKeySkippedKey, key).Msg("Skipping duplicate record")

		return false
	}

	s.seen[key] = struct{}{}
	s.items = append(s.items, item)

	return true
}

// Seen reports whether key was already accepted.
func (s *Set[T]) Seen(key string) bool {
	_, ok := s.seen[key]
	return ok
}

// Full reports whether the cap has been reached.
func (s *Set[T]) Full() bool {
	return s.max > 0 && len(s.items) >= s.max
}

// Len returns the number of kept items.
func (s *Set[T]) Len() int {
	return len(s.items)
}

// Items returns the kept items in first-seen order.
func (s *Set[T]) Items() []T {
	return append([]T(nil), s.items...)
}

// Dropped returns how many items were rejected as duplicates or malformed.
func (s *Set[T]) Dropped() int {
	return s.dropped
}
