// Package scoring computes keyword scores for titles and ranks collected records.
package scoring

import (
	"math"
	"sort"
	"sync"

	"github.com/cloudflare/ahocorasick"

	"github.com/lueurxax/aggro-radar/internal/core/domain"
	"github.com/lueurxax/aggro-radar/internal/keywords"
)

const roundFactor = 100

type tierMatcher struct {
	weight   float64
	keywords []string
	matcher  *ahocorasick.Matcher
}

// Scorer adds up tier weights for every keyword contained in a title.
// It is safe for concurrent use.
type Scorer struct {
	mu    sync.Mutex
	tiers []tierMatcher
}

// NewScorer builds one matcher per tier. Tiers are scanned in the given order.
func NewScorer(tiers []keywords.TierSet) *Scorer {
	s := &Scorer{tiers: make([]tierMatcher, 0, len(tiers))}

	for _, t := range tiers {
		if len(t.Keywords) == 0 {
			continue
		}

		kws := append([]string(nil), t.Keywords...)

		s.tiers = append(s.tiers, tierMatcher{
			weight:   t.Weight,
			keywords: kws,
			matcher:  ahocorasick.NewStringMatcher(kws),
		})
	}

	return s
}

// Score returns the rounded score of a title and the matched keywords. Keywords
// of one tier are reported in dictionary order; tiers follow scan order.
func (s *Scorer) Score(title string) (float64, []string) {
	matched := []string{}

	if title == "" {
		return 0, matched
	}

	in := []byte(title)
	score := 0.0

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.tiers {
		hits := t.matcher.Match(in)
		sort.Ints(hits)

		for _, idx := range hits {
			score += t.weight
			matched = append(matched, t.keywords[idx])
		}
	}

	return round(score), matched
}

func round(v float64) float64 {
	return math.Round(v*roundFactor) / roundFactor
}

// TitleFunc selects the text to score from a record.
type TitleFunc func(domain.RawRecord) string

// ByTitle scores the record title.
func ByTitle(r domain.RawRecord) string {
	return r.Title
}

// Rank scores every record and returns a new slice sorted by score, highest first.
// Records with equal scores keep their input order. The input is not modified.
func (s *Scorer) Rank(records []domain.RawRecord, title TitleFunc) []domain.ScoredRecord {
	if title == nil {
		title = ByTitle
	}

	out := make([]domain.ScoredRecord, len(records))

	for i, r := range records {
		score, kws := s.Score(title(r))
		out[i] = domain.ScoredRecord{RawRecord: r, Score: score, Keywords: kws}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})

	return out
}
