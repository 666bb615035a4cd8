// Package naver collects the most-viewed articles of a ranking section and,
// when credentials are configured, results of the news search API.
package naver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/lueurxax/aggro-radar/internal/core/domain"
	"github.com/lueurxax/aggro-radar/internal/process/dedup"
	"github.com/lueurxax/aggro-radar/internal/process/filters"
	"github.com/lueurxax/aggro-radar/internal/platform/htmlutils"
	"github.com/lueurxax/aggro-radar/internal/sources"
)

const (
	DefaultRankingURL = "https://news.naver.com/main/ranking/popularDay.naver"
	DefaultSearchURL  = "https://openapi.naver.com/v1/search/news.json"

	articleMarker    = "n.news.naver.com/article"
	rankingMarker    = "ntype=RANKING"
	rankingBase      = "https://news.naver.com"
	headerClientID   = "X-Naver-Client-Id"
	headerClientSec  = "X-Naver-Client-Secret"
	dateLayout       = "2006-01-02"
	dateLen          = 10
	minTitleRunes    = 5
	searchMaxDisplay = 100
	defaultSection   = "100"

	defaultPerSection   = 5
	defaultTotalLimit   = 10
	defaultAPIPerQuery  = 5
	logKeyQuery         = "query"
	logKeySection       = "section"
	defaultBrowserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

var junkLabels = []string{"동영상기사", "이미지", "집계안내", "닫기"}

var seoul = time.FixedZone("KST", 9*60*60)

// Config holds the ranking page and search API settings.
type Config struct {
	RankingURL   string
	SearchURL    string
	ClientID     string
	ClientSecret string
	PerSection   int
	TotalLimit   int
	APIPerQuery  int
	// DenyPatterns drop titles containing any of them.
	DenyPatterns []string
}

// Source reads the ranking page first and the search API second.
type Source struct {
	cfg     Config
	fetcher sources.Fetcher
	filter  *filters.Filterer
	logger  *zerolog.Logger
	now     func() time.Time
}

// New creates the ranking source.
func New(cfg Config, fetcher sources.Fetcher, logger *zerolog.Logger) *Source {
	if cfg.RankingURL == "" {
		cfg.RankingURL = DefaultRankingURL
	}

	if cfg.SearchURL == "" {
		cfg.SearchURL = DefaultSearchURL
	}

	if cfg.PerSection <= 0 {
		cfg.PerSection = defaultPerSection
	}

	if cfg.TotalLimit <= 0 {
		cfg.TotalLimit = defaultTotalLimit
	}

	if cfg.APIPerQuery <= 0 {
		cfg.APIPerQuery = defaultAPIPerQuery
	}

	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &Source{
		cfg:     cfg,
		fetcher: fetcher,
		filter:  filters.New(minTitleRunes, junkLabels, cfg.DenyPatterns),
		logger:  logger,
		now:     time.Now,
	}
}

func (s *Source) Name() domain.Source { return domain.SourceNaver }

// Windowed is false: the ranking page always shows the current day.
func (s *Source) Windowed() bool { return false }

func (s *Source) hasCredentials() bool {
	return strings.TrimSpace(s.cfg.ClientID) != "" && strings.TrimSpace(s.cfg.ClientSecret) != ""
}

// Fetch collects up to TotalLimit unique articles. A failing ranking page does
// not stop the search API; an error is returned only when nothing was collected.
func (s *Source) Fetch(ctx context.Context, q sources.Query) ([]domain.RawRecord, error) {
	section := q.Section
	if section == "" {
		section = defaultSection
	}

	set := dedup.NewSet[domain.RawRecord](s.cfg.TotalLimit, s.logger)

	var firstErr error

	ranked, err := s.fetchRanking(ctx, section)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("naver ranking: %w", ctx.Err())
		}

		s.logger.Warn().Err(err).Str(logKeySection, section).Msg("naver ranking page failed")

		firstErr = err
	}

	for _, r := range ranked {
		set.Add(r)
	}

	if s.hasCredentials() {
		for _, topic := range q.Topics {
			if set.Full() {
				break
			}

			found, err := s.search(ctx, topic)
			if err != nil {
				if ctx.Err() != nil {
					return nil, fmt.Errorf("naver search: %w", ctx.Err())
				}

				s.logger.Warn().Err(err).Str(logKeyQuery, topic).Msg("naver search failed")

				if firstErr == nil {
					firstErr = err
				}

				continue
			}

			for _, r := range found {
				set.Add(r)
			}
		}
	}

	if set.Len() == 0 && firstErr != nil {
		return nil, firstErr
	}

	return set.Items(), nil
}

func (s *Source) fetchRanking(ctx context.Context, section string) ([]domain.RawRecord, error) {
	header := http.Header{}
	header.Set("User-Agent", defaultBrowserAgent)

	body, err := s.fetcher.Fetch(ctx, s.cfg.RankingURL+"?sid1="+url.QueryEscape(section), header)
	if err != nil {
		return nil, fmt.Errorf("fetch ranking page (sid1=%s): %w", section, err)
	}

	return s.parseRanking(body)
}

func (s *Source) parseRanking(body []byte) ([]domain.RawRecord, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse ranking page: %w", err)
	}

	base, _ := url.Parse(rankingBase) //nolint:errcheck // constant URL
	today := s.now().In(seoul).Format(dateLayout)
	seen := make(map[string]struct{})

	var out []domain.RawRecord

	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		if !strings.Contains(href, articleMarker) || !strings.Contains(href, rankingMarker) {
			return true
		}

		ref, err := url.Parse(href)
		if err != nil {
			return true
		}

		link := base.ResolveReference(ref).String()
		if _, ok := seen[link]; ok {
			return true
		}

		title := htmlutils.CleanTitle(sel.Text())
		if s.filter.IsFiltered(title) {
			return true
		}

		seen[link] = struct{}{}

		out = append(out, domain.RawRecord{Title: title, URL: link, Source: domain.SourceNaver, UploadDate: today})

		return len(out) < s.cfg.PerSection
	})

	return out, nil
}

type searchResponse struct {
	Items []searchItem `json:"items"`
}

type searchItem struct {
	Title        string `json:"title"`
	Link         string `json:"link"`
	OriginalLink string `json:"originallink"`
	PubDate      string `json:"pubDate"` //nolint:tagliatelle // Naver uses camelCase
}

func (s *Source) search(ctx context.Context, query string) ([]domain.RawRecord, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("display", strconv.Itoa(min(s.cfg.APIPerQuery, searchMaxDisplay)))
	params.Set("sort", "date")

	header := http.Header{}
	header.Set(headerClientID, s.cfg.ClientID)
	header.Set(headerClientSec, s.cfg.ClientSecret)

	body, err := s.fetcher.Fetch(ctx, s.cfg.SearchURL+"?"+params.Encode(), header)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse search json: %w", err)
	}

	out := make([]domain.RawRecord, 0, len(resp.Items))

	for _, item := range resp.Items {
		title := htmlutils.StripHTMLTags(item.Title)

		link := item.Link
		if link == "" {
			link = item.OriginalLink
		}

		if title == "" || link == "" {
			continue
		}

		out = append(out, domain.RawRecord{
			Title:      title,
			URL:        link,
			Source:     domain.SourceNaver,
			UploadDate: pubDate(item.PubDate),
		})
	}

	return out, nil
}

func pubDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	if t, err := time.Parse(time.RFC1123Z, raw); err == nil {
		return t.Format(dateLayout)
	}

	if len(raw) >= dateLen && raw[4] == '-' {
		return raw[:dateLen]
	}

	return ""
}
