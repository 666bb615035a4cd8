package app

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lueurxax/aggro-radar/internal/core/domain"
	"github.com/lueurxax/aggro-radar/internal/core/errors"
	"github.com/lueurxax/aggro-radar/internal/platform/config"
)

const (
	testPolitics = "정치"
	rssPath      = "/rss/search"
	rankingPath  = "/main/ranking"
)

func testFeed() string {
	var sb strings.Builder

	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?><rss version="2.0"><channel><title>News</title>`)

	items := [][2]string{
		{"단독 국회 예산안 통과", "https://news.example.com/1"},
		{"국회 예산안 처리 결국 연기", "https://news.example.com/2"},
	}
	for _, it := range items {
		fmt.Fprintf(&sb, `<item><title>%s</title><link>%s</link><pubDate>Wed, 01 May 2024 10:00:00 GMT</pubDate></item>`, it[0], it[1])
	}

	sb.WriteString(`</channel></rss>`)

	return sb.String()
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case rssPath:
			w.Header().Set("Content-Type", "application/rss+xml")
			_, _ = w.Write([]byte(testFeed()))
		default:
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
		}
	}))
	t.Cleanup(server.Close)

	return server
}

func testConfig(t *testing.T, serverURL string) *config.Config {
	t.Helper()

	dir := t.TempDir()

	return &config.Config{
		AppEnv:              "test",
		GoogleNewsRSSURL:    serverURL + rssPath,
		NaverRankingURL:     serverURL + rankingPath,
		HTTPTimeout:         5 * time.Second,
		VideoMaxPerQuery:    3,
		VideoMaxTotal:       10,
		VideoMinViews:       100000,
		NewsMaxPerQuery:     5,
		NewsMaxTotal:        2,
		RankingPerSection:   5,
		RankingTotalLimit:   10,
		MinResults:          1,
		ExpandWindows:       []int{1},
		TopN:                30,
		SimilarityStrategy:  "word_overlap",
		SimilarityMinCommon: 2,
		SimilarityMinRatio:  0.5,
		MaxSecondary:        2,
		SnapshotPath:        filepath.Join(dir, "web", "data.js"),
		SpreadsheetDir:      filepath.Join(dir, "xlsx"),
		SpreadsheetTopN:     30,
		ScheduleCron:        "0 */6 * * *",
		ScheduleTimezone:    "Asia/Seoul",
	}
}

func newTestApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()

	a, err := New(cfg, nil)
	require.NoError(t, err)

	a.refreshPause = 0

	return a
}

func TestNewLoadsCatalogue(t *testing.T) {
	a := newTestApp(t, testConfig(t, "http://127.0.0.1:1"))

	labels := make([]string, 0, 4)
	for _, c := range a.Categories() {
		labels = append(labels, c.Label)
	}

	assert.Equal(t, []string{"정치", "경제", "사회", "장년"}, labels)
}

func TestNewRejectsMissingCatalogueDir(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1")
	cfg.KeywordsDir = filepath.Join(t.TempDir(), "missing")

	_, err := New(cfg, nil)
	require.Error(t, err)
}

func TestRunRefreshEndToEnd(t *testing.T) {
	server := newTestServer(t)
	cfg := testConfig(t, server.URL)
	cfg.ExportOnRefresh = true

	a := newTestApp(t, cfg)

	report, err := a.RunRefresh(context.Background(), testPolitics)
	require.NoError(t, err)

	assert.Equal(t, testPolitics, report.Category)
	assert.Equal(t, domain.StatusOK, report.Status[domain.SourceGoogleNews])
	assert.Contains(t, report.Status[domain.SourceVideo], domain.StatusFailedPrefix)
	assert.Contains(t, report.Status[domain.SourceNaver], domain.StatusFailedPrefix)
	assert.Equal(t, 2, report.Published)
	assert.Equal(t, 2, report.Linked)
	assert.NotEmpty(t, report.ExportPath)

	body, err := os.ReadFile(cfg.SnapshotPath)
	require.NoError(t, err)
	assert.Contains(t, string(body), "단독 국회 예산안 통과")
	assert.Contains(t, string(body), `"youtube": "수집 불가: `)

	_, err = os.Stat(report.ExportPath)
	require.NoError(t, err)
}

func TestRunExport(t *testing.T) {
	server := newTestServer(t)
	cfg := testConfig(t, server.URL)
	a := newTestApp(t, cfg)

	_, err := a.RunExport(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNoRecords))

	_, err = a.RunRefresh(context.Background(), "1")
	require.NoError(t, err)

	path, err := a.RunExport(context.Background())
	require.NoError(t, err)
	assert.Equal(t, cfg.SpreadsheetDir, filepath.Dir(path))
	assert.True(t, strings.HasSuffix(path, "(1).xlsx"))
}

func TestRunScheduleOnce(t *testing.T) {
	server := newTestServer(t)
	cfg := testConfig(t, server.URL)
	cfg.ScheduleCategories = []string{"politics"}

	a := newTestApp(t, cfg)
	require.NoError(t, a.RunSchedule(context.Background(), true))

	records, err := a.store.Load()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, testPolitics, records[0].Category)
}

func TestRunScheduleStopsOnSnapshotWriteFailure(t *testing.T) {
	var mu sync.Mutex

	feeds := 0

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != rssPath {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}

		mu.Lock()
		feeds++
		mu.Unlock()

		_, _ = w.Write([]byte(testFeed()))
	}))
	t.Cleanup(server.Close)

	cfg := testConfig(t, server.URL)
	cfg.ScheduleCategories = []string{testPolitics, "경제"}

	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("file"), 0o600))

	cfg.SnapshotPath = filepath.Join(blocker, "data.js")

	a := newTestApp(t, cfg)

	err := a.RunSchedule(context.Background(), true)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrSnapshotWrite))

	mu.Lock()
	defer mu.Unlock()

	// NewsMaxTotal is 2, so the first category is satisfied by its first feed.
	assert.Equal(t, 1, feeds)
}

func TestRunScheduleRejectsUnknownCategory(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1")
	cfg.ScheduleCategories = []string{"연예"}

	a := newTestApp(t, cfg)

	err := a.RunSchedule(context.Background(), true)
	assert.True(t, errors.Is(err, errors.ErrUnknownCategory))
}

func TestRunScheduleOnceAllFailing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	t.Cleanup(server.Close)

	cfg := testConfig(t, server.URL)
	cfg.ScheduleCategories = []string{testPolitics}

	a := newTestApp(t, cfg)

	// Every source fails, which is an empty collection rather than a job failure.
	require.NoError(t, a.RunSchedule(context.Background(), true))

	_, err := os.Stat(cfg.SnapshotPath)
	assert.True(t, os.IsNotExist(err))
}
