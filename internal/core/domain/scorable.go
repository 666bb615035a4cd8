package domain

// Keyed defines the interface for entities that can be deduplicated by a string key.
// RawRecord, ScoredRecord and EnrichedRecord all satisfy it through embedding.
type Keyed interface {
	// DedupKey returns the uniqueness key. An empty key marks a malformed entity.
	DedupKey() string
}
