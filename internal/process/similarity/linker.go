package similarity

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/lueurxax/aggro-radar/internal/core/domain"
)

const (
	DefaultMaxSecondary = 2

	logKeyURL     = "url"
	logKeyLinked  = "linked_url"
	logKeyPoolLen = "pool"
)

// Linker attaches related news records to ranked records.
type Linker struct {
	strategy Strategy
	max      int
	logger   *zerolog.Logger
}

// NewLinker creates a Linker. A nil strategy selects word overlap.
func NewLinker(strategy Strategy, maxSecondary int, logger *zerolog.Logger) *Linker {
	if strategy == nil {
		strategy = WordOverlap{MinCommon: DefaultMinCommon}
	}

	if maxSecondary <= 0 {
		maxSecondary = DefaultMaxSecondary
	}

	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &Linker{strategy: strategy, max: maxSecondary, logger: logger}
}

// Strategy returns the configured comparison strategy.
func (l *Linker) Strategy() Strategy {
	return l.strategy
}

// Link enriches every news record of top with up to max similar records taken
// from pool in pool order. Records are never linked to themselves and a
// secondary URL is used at most once per record. Non-news records and records
// without a URL are returned without links.
func (l *Linker) Link(top []domain.ScoredRecord, pool []domain.RawRecord) []domain.EnrichedRecord {
	candidates := newsPool(pool)

	l.logger.Debug().Int(logKeyPoolLen, len(candidates)).Msg("Linking similar news")

	out := make([]domain.EnrichedRecord, len(top))

	for i, rec := range top {
		out[i] = domain.EnrichedRecord{ScoredRecord: rec}

		if !rec.Source.IsNews() {
			continue
		}

		self := strings.TrimSpace(rec.URL)
		if self == "" {
			continue
		}

		out[i].Secondary = l.findSimilar(rec.Title, self, candidates)
	}

	return out
}

func (l *Linker) findSimilar(title, self string, candidates []domain.RawRecord) []domain.SecondaryRef {
	used := map[string]struct{}{self: {}}

	var refs []domain.SecondaryRef

	for _, c := range candidates {
		u := strings.TrimSpace(c.URL)
		if _, ok := used[u]; ok {
			continue
		}

		if !l.strategy.Similar(title, c.Title) {
			continue
		}

		used[u] = struct{}{}
		refs = append(refs, domain.SecondaryRef{URL: u, Date: c.UploadDate})

		l.logger.Debug().Str(logKeyURL, self).Str(logKeyLinked, u).Msg("Linked similar news")

		if len(refs) >= l.max {
			break
		}
	}

	return refs
}

func newsPool(pool []domain.RawRecord) []domain.RawRecord {
	out := make([]domain.RawRecord, 0, len(pool))

	for _, r := range pool {
		if !r.Source.IsNews() || strings.TrimSpace(r.URL) == "" || r.Title == "" {
			continue
		}

		out = append(out, r)
	}

	return out
}
