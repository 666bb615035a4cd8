// Package filters implements title filtering for collected records.
//
// The package provides configurable filters to exclude unusable titles:
//   - Minimum length filter (counted in characters)
//   - Symbol-only title detection
//   - Exact-match junk labels (navigation text scraped as titles)
//   - Deny pattern matching
package filters

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

const (
	ReasonEmpty      = "filter_empty"
	ReasonMinLength  = "filter_min_length"
	ReasonSymbolOnly = "filter_symbol_only"
	ReasonJunkLabel  = "filter_junk_label"
	ReasonDeny       = "filter_deny"
)

// Filterer applies title filters to determine if records should be excluded.
type Filterer struct {
	minRunes     int
	junkLabels   map[string]struct{}
	denyPatterns []string
	caser        cases.Caser
}

// New creates a new Filterer. minRunes is the shortest accepted title length;
// junkLabels are compared against the whole trimmed title; denyPatterns match anywhere.
func New(minRunes int, junkLabels, denyPatterns []string) *Filterer {
	if minRunes < 0 {
		minRunes = 0
	}

	caser := cases.Fold()

	labels := make(map[string]struct{}, len(junkLabels))
	for _, l := range junkLabels {
		labels[caser.String(strings.TrimSpace(l))] = struct{}{}
	}

	patterns := make([]string, 0, len(denyPatterns))
	for _, p := range denyPatterns {
		if p = strings.TrimSpace(p); p != "" {
			patterns = append(patterns, caser.String(p))
		}
	}

	return &Filterer{
		minRunes:     minRunes,
		junkLabels:   labels,
		denyPatterns: patterns,
		caser:        caser,
	}
}

// IsFiltered returns true if the title should be excluded.
func (f *Filterer) IsFiltered(title string) bool {
	filtered, _ := f.FilterReason(title)
	return filtered
}

// FilterReason returns whether the title is filtered and the reason code.
func (f *Filterer) FilterReason(title string) (bool, string) {
	title = strings.TrimSpace(title)
	if title == "" {
		return true, ReasonEmpty
	}

	if utf8.RuneCountInString(title) < f.minRunes {
		return true, ReasonMinLength
	}

	if IsSymbolOnly(title) {
		return true, ReasonSymbolOnly
	}

	folded := f.caser.String(title)

	if _, ok := f.junkLabels[folded]; ok {
		return true, ReasonJunkLabel
	}

	for _, p := range f.denyPatterns {
		if strings.Contains(folded, p) {
			return true, ReasonDeny
		}
	}

	return false, ""
}
