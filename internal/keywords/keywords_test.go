package keywords

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lueurxax/aggro-radar/internal/core/errors"
)

const (
	testLabelPolitics = "정치"
	testLabelEconomy  = "경제"
)

const politicsYAML = `
name: politics
label: 정치
section: "100"
order: 1
search_topics: [국회, 대통령]
tier1: [단독, 충격, 단독]
tier2: [경악]
tier3: [" ", 결국]
`

const economyYAML = `
name: economy
label: 경제
section: "101"
order: 2
search_topics: [금리]
tier1: [폭락, 충격]
tier2: [급등]
tier3: [결국]
`

func TestLoadEmbedded(t *testing.T) {
	dict, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"정치", "경제", "사회", "장년"}, dict.Labels())

	tiers := dict.Tiers()
	require.Len(t, tiers, 3)
	assert.Equal(t, Tier1, tiers[0].Tier)
	assert.InDelta(t, 10.0, tiers[0].Weight, 0.001)
	assert.InDelta(t, 7.0, tiers[1].Weight, 0.001)
	assert.InDelta(t, 3.0, tiers[2].Weight, 0.001)
	assert.Contains(t, tiers[0].Keywords, "단독")
}

func TestLoadFSMergesAndDeduplicatesTiers(t *testing.T) {
	fsys := fstest.MapFS{
		"politics.yaml": {Data: []byte(politicsYAML)},
		"economy.yml":   {Data: []byte(economyYAML)},
		"README.md":     {Data: []byte("ignored")},
	}

	dict, err := LoadFS(fsys, nil)
	require.NoError(t, err)

	tiers := dict.Tiers()
	assert.Equal(t, []string{"단독", "충격", "폭락"}, tiers[0].Keywords)
	assert.Equal(t, []string{"경악", "급등"}, tiers[1].Keywords)
	assert.Equal(t, []string{"결국"}, tiers[2].Keywords)

	assert.Equal(t, []string{testLabelPolitics, testLabelEconomy}, dict.Labels())
	assert.Equal(t, []string{"금리"}, dict.SearchTopics()[testLabelEconomy])
}

func TestLoadFSSkipsBrokenCategory(t *testing.T) {
	fsys := fstest.MapFS{
		"politics.yaml": {Data: []byte(politicsYAML)},
		"broken.yaml":   {Data: []byte("tier1: [unclosed")},
		"nolabel.yaml":  {Data: []byte("name: x\ntier1: [a]")},
	}

	dict, err := LoadFS(fsys, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{testLabelPolitics}, dict.Labels())
}

func TestLoadFSAllBroken(t *testing.T) {
	fsys := fstest.MapFS{
		"broken.yaml": {Data: []byte("tier1: [unclosed")},
	}

	_, err := LoadFS(fsys, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrEmptyDictionary))
}

func TestResolve(t *testing.T) {
	dict, err := LoadFS(fstest.MapFS{
		"politics.yaml": {Data: []byte(politicsYAML)},
		"economy.yaml":  {Data: []byte(economyYAML)},
	}, nil)
	require.NoError(t, err)

	tests := []struct {
		name      string
		input     string
		wantLabel string
		wantErr   bool
	}{
		{name: "by label", input: "경제", wantLabel: testLabelEconomy},
		{name: "by name", input: "Politics", wantLabel: testLabelPolitics},
		{name: "by index", input: "2", wantLabel: testLabelEconomy},
		{name: "index out of range", input: "3", wantErr: true},
		{name: "unknown", input: "연예", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat, err := dict.Resolve(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, errors.ErrUnknownCategory))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantLabel, cat.Label)
		})
	}
}

func TestQueries(t *testing.T) {
	dict, err := LoadFS(fstest.MapFS{"politics.yaml": {Data: []byte(politicsYAML)}}, nil)
	require.NoError(t, err)

	queries, err := dict.Queries(testLabelPolitics)
	require.NoError(t, err)
	assert.Equal(t, []string{"국회", "대통령", "정치", "정치 뉴스"}, queries)

	cat, err := dict.Resolve(testLabelPolitics)
	require.NoError(t, err)
	assert.Equal(t, "100", cat.RankingSection())
	assert.Equal(t, "100", Category{}.RankingSection())
}

func TestNewEmpty(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, errors.ErrEmptyDictionary)
}
