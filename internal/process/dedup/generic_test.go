package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lueurxax/aggro-radar/internal/core/domain"
)

func urls(records []domain.RawRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.URL
	}

	return out
}

func TestUnique(t *testing.T) {
	tests := []struct {
		name     string
		items    []domain.RawRecord
		max      int
		wantURLs []string
	}{
		{
			name:     "empty input",
			items:    nil,
			max:      10,
			wantURLs: []string{},
		},
		{
			name: "same url from two sources keeps the first",
			items: []domain.RawRecord{
				{Title: "첫 제목", URL: "https://n.news/1", Source: domain.SourceGoogleNews},
				{Title: "다른 제목", URL: "https://n.news/1", Source: domain.SourceNaver},
			},
			max:      10,
			wantURLs: []string{"https://n.news/1"},
		},
		{
			name: "preserves first seen order",
			items: []domain.RawRecord{
				{Title: "b", URL: "https://b"},
				{Title: "a", URL: "https://a"},
				{Title: "b2", URL: "https://b"},
				{Title: "c", URL: "https://c"},
			},
			max:      0,
			wantURLs: []string{"https://b", "https://a", "https://c"},
		},
		{
			name: "stops at max",
			items: []domain.RawRecord{
				{Title: "a", URL: "https://a"},
				{Title: "b", URL: "https://b"},
				{Title: "c", URL: "https://c"},
			},
			max:      2,
			wantURLs: []string{"https://a", "https://b"},
		},
		{
			name: "empty url falls back to title",
			items: []domain.RawRecord{
				{Title: "같은 제목"},
				{Title: "같은 제목"},
				{Title: "다른 제목"},
			},
			max:      10,
			wantURLs: []string{"", ""},
		},
		{
			name: "record without url and title is skipped",
			items: []domain.RawRecord{
				{Title: " "},
				{Title: "a", URL: "https://a"},
			},
			max:      10,
			wantURLs: []string{"https://a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Unique(tt.items, tt.max, nil)
			assert.Equal(t, tt.wantURLs, urls(got))
			assert.LessOrEqual(t, len(got), len(tt.items))
		})
	}
}

func TestUniqueFullCountsDropped(t *testing.T) {
	items := []domain.RawRecord{
		{Title: "a", URL: "https://a"},
		{Title: "a2", URL: "https://a"},
		{Title: "b", URL: "https://b"},
		{Title: "b2", URL: "https://b"},
		{Title: "c", URL: "https://c"},
	}

	result := UniqueFull(items, 0, nil)
	assert.Len(t, result.Items, 3)
	assert.Equal(t, 2, result.DroppedCount)
}

func TestUniqueScoredRecords(t *testing.T) {
	items := []domain.ScoredRecord{
		{RawRecord: domain.RawRecord{URL: "https://a"}, Score: 10},
		{RawRecord: domain.RawRecord{URL: "https://a"}, Score: 3},
	}

	got := Unique(items, 0, nil)
	assert.Len(t, got, 1)
	assert.InDelta(t, 10.0, got[0].Score, 0.001)
}

func TestSet(t *testing.T) {
	set := NewSet[domain.RawRecord](2, nil)

	assert.True(t, set.Add(domain.RawRecord{URL: "https://a"}))
	assert.False(t, set.Add(domain.RawRecord{URL: " https://a "}))
	assert.True(t, set.Seen("https://a"))
	assert.False(t, set.Full())
	assert.True(t, set.Add(domain.RawRecord{URL: "https://b"}))
	assert.True(t, set.Full())
	assert.False(t, set.Add(domain.RawRecord{URL: "https://c"}))
	assert.Equal(t, 2, set.Len())
	assert.Equal(t, 1, set.Dropped())
	assert.Equal(t, []string{"https://a", "https://b"}, urls(set.Items()))
}
