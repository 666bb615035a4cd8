package domain

import (
	"strings"
)

// Source identifies the adapter a record was collected from.
type Source string

const (
	SourceVideo      Source = "youtube"
	SourceGoogleNews Source = "google"
	SourceNaver      Source = "naver"
)

// Display labels used in the published dataset.
const (
	LabelVideo      = "유튜브"
	LabelGoogleNews = "구글뉴스"
	LabelNaver      = "네이버뉴스"
)

// Status values reported per source after a refresh.
const (
	StatusOK           = "OK"
	StatusFailedPrefix = "수집 불가"
)

// AllSources returns the sources in collection order.
func AllSources() []Source {
	return []Source{SourceVideo, SourceGoogleNews, SourceNaver}
}

// Label returns the display label of the source.
func (s Source) Label() string {
	switch s {
	case SourceVideo:
		return LabelVideo
	case SourceGoogleNews:
		return LabelGoogleNews
	case SourceNaver:
		return LabelNaver
	default:
		return string(s)
	}
}

// IsNews reports whether records of this source are news articles and take part in similarity linking.
func (s Source) IsNews() bool {
	return s == SourceGoogleNews || s == SourceNaver
}

// ParseSource accepts either the source identifier or its display label.
func ParseSource(v string) (Source, bool) {
	v = strings.TrimSpace(v)

	for _, s := range AllSources() {
		if v == string(s) || v == s.Label() {
			return s, true
		}
	}

	return "", false
}

// RawRecord is a title collected by a source adapter. It is never mutated after collection.
type RawRecord struct {
	Title      string
	URL        string
	Source     Source
	UploadDate string
	Views      *int64
	Category   string
}

// DedupKey returns the URL, or the title when the URL is empty.
func (r RawRecord) DedupKey() string {
	if u := strings.TrimSpace(r.URL); u != "" {
		return u
	}

	return strings.TrimSpace(r.Title)
}

// ScoredRecord is a raw record with its keyword score attached.
type ScoredRecord struct {
	RawRecord

	Score    float64
	Keywords []string
}

// KeywordString joins matched keywords the way they are published.
func (s ScoredRecord) KeywordString() string {
	return strings.Join(s.Keywords, ", ")
}

// SecondaryRef points to a related news record.
type SecondaryRef struct {
	URL  string
	Date string
}

// EnrichedRecord is a scored record with related news attached.
type EnrichedRecord struct {
	ScoredRecord

	Secondary []SecondaryRef
}

// SecondaryAt returns the i-th secondary reference or an empty one.
func (e EnrichedRecord) SecondaryAt(i int) SecondaryRef {
	if i < 0 || i >= len(e.Secondary) {
		return SecondaryRef{}
	}

	return e.Secondary[i]
}

// StatusMap holds the per-source outcome of a refresh.
type StatusMap map[Source]string

// FailedStatus formats the status value of a failed source.
func FailedStatus(err error) string {
	if err == nil {
		return StatusFailedPrefix
	}

	return StatusFailedPrefix + ": " + err.Error()
}
