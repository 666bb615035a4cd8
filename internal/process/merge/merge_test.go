package merge

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lueurxax/aggro-radar/internal/core/domain"
)

const (
	testPolitics = "정치"
	testEconomy  = "경제"
)

func records(category string, n int, prefix string) []domain.EnrichedRecord {
	out := make([]domain.EnrichedRecord, n)
	for i := range out {
		out[i] = domain.EnrichedRecord{ScoredRecord: domain.ScoredRecord{
			RawRecord: domain.RawRecord{
				Title:    fmt.Sprintf("%s %d", prefix, i),
				URL:      fmt.Sprintf("https://%s/%d", prefix, i),
				Category: category,
			},
			Score: float64(i),
		}}
	}

	return out
}

func TestMergeReplacesCategory(t *testing.T) {
	persisted := append(records(testPolitics, 10, "old-politics"), records(testEconomy, 5, "economy")...)
	fresh := records(testPolitics, 3, "new-politics")

	result := Merge(persisted, fresh, testPolitics)

	require.Len(t, result.Records, 8)
	assert.Equal(t, map[string]int{testPolitics: 3, testEconomy: 5}, CountByCategory(result.Records))
	assert.Equal(t, 5, result.Kept)
	assert.Equal(t, 10, result.Removed)
	assert.Equal(t, 3, result.Added)

	assert.Equal(t, persisted[10:], result.Records[:5])
	assert.Equal(t, fresh, result.Records[5:])
}

func TestMergeEmptyPersisted(t *testing.T) {
	fresh := records(testEconomy, 2, "economy")

	result := Merge(nil, fresh, testEconomy)
	assert.Equal(t, fresh, result.Records)
	assert.Zero(t, result.Removed)
}

func TestMergeTagsFreshRecords(t *testing.T) {
	fresh := records("", 2, "untagged")

	result := Merge(records(testEconomy, 1, "economy"), fresh, testPolitics)
	require.Len(t, result.Records, 3)
	assert.Equal(t, testPolitics, result.Records[1].Category)
	assert.Equal(t, testPolitics, result.Records[2].Category)
	assert.Empty(t, fresh[0].Category)
}

func TestMergeEmptyFreshRemovesCategory(t *testing.T) {
	persisted := append(records(testPolitics, 2, "politics"), records(testEconomy, 1, "economy")...)

	result := Merge(persisted, nil, testPolitics)
	assert.Equal(t, map[string]int{testEconomy: 1}, CountByCategory(result.Records))
}
