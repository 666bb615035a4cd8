// Package similarity decides whether two titles describe the same story and
// links top-ranked news records to related ones.
package similarity

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/text/unicode/norm"

	"github.com/lueurxax/aggro-radar/internal/core/errors"
)

// Strategy names accepted by NewStrategy.
const (
	StrategyWordOverlap   = "word_overlap"
	StrategySequenceRatio = "sequence_ratio"
)

const (
	DefaultMinCommon = 2
	DefaultMinRatio  = 0.5
	minWordRunes     = 2
)

var (
	salientWordRe = regexp.MustCompile(`[가-힣a-zA-Z0-9]{2,}`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
)

// Strategy compares two titles.
type Strategy interface {
	Name() string
	Similar(a, b string) bool
}

// NewStrategy returns the strategy registered under name. An empty name selects word overlap.
func NewStrategy(name string, minCommon int, minRatio float64) (Strategy, error) {
	switch name {
	case "", StrategyWordOverlap:
		if minCommon <= 0 {
			minCommon = DefaultMinCommon
		}

		return WordOverlap{MinCommon: minCommon}, nil
	case StrategySequenceRatio:
		if minRatio <= 0 {
			minRatio = DefaultMinRatio
		}

		return SequenceRatio{MinRatio: minRatio}, nil
	default:
		return nil, fmt.Errorf("%w: similarity strategy %q", errors.ErrInvalidInput, name)
	}
}

// SalientWords returns the set of Hangul/alphanumeric runs of at least two characters.
func SalientWords(title string) map[string]struct{} {
	words := make(map[string]struct{})
	if title == "" {
		return words
	}

	for _, w := range salientWordRe.FindAllString(norm.NFC.String(title), -1) {
		if len([]rune(w)) >= minWordRunes {
			words[w] = struct{}{}
		}
	}

	return words
}

// WordOverlap treats titles as similar when they share at least MinCommon salient words.
type WordOverlap struct {
	MinCommon int
}

func (WordOverlap) Name() string { return StrategyWordOverlap }

func (w WordOverlap) Similar(a, b string) bool {
	wa, wb := SalientWords(a), SalientWords(b)
	if len(wa) == 0 || len(wb) == 0 {
		return false
	}

	common := 0

	for word := range wa {
		if _, ok := wb[word]; ok {
			common++
		}
	}

	return common >= w.MinCommon
}

// SequenceRatio compares titles with whitespace removed using the
// longest-matching-block ratio.
type SequenceRatio struct {
	MinRatio float64
}

func (SequenceRatio) Name() string { return StrategySequenceRatio }

func (s SequenceRatio) Similar(a, b string) bool {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return false
	}

	return Ratio(a, b) >= s.MinRatio
}

// Ratio returns the similarity ratio in [0, 1] of two titles after removing whitespace.
func Ratio(a, b string) float64 {
	ra := runes(whitespaceRe.ReplaceAllString(norm.NFC.String(a), ""))
	rb := runes(whitespaceRe.ReplaceAllString(norm.NFC.String(b), ""))

	return difflib.NewMatcher(ra, rb).Ratio()
}

func runes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}

	return out
}
