// Package googlenews collects news titles from the Google News search feed and,
// when a key is configured, from NewsAPI.
package googlenews

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"

	"github.com/lueurxax/aggro-radar/internal/core/domain"
	"github.com/lueurxax/aggro-radar/internal/core/errors"
	"github.com/lueurxax/aggro-radar/internal/process/dedup"
	"github.com/lueurxax/aggro-radar/internal/process/filters"
	"github.com/lueurxax/aggro-radar/internal/sources"
)

const (
	DefaultRSSURL     = "https://news.google.com/rss/search"
	DefaultNewsAPIURL = "https://newsapi.org/v2/everything"

	newsAPIAuthHeader = "X-Api-Key"
	newsAPIStatusOK   = "ok"
	newsAPIMaxPage    = 100
	dateLayout        = "2006-01-02"
	dateLen           = 10
	minTitleRunes     = 4

	defaultMaxPerQuery     = 5
	defaultMaxTotal        = 10
	defaultNewsAPIPerQuery = 5

	logKeyQuery = "query"
)

// Config holds the news collection settings.
type Config struct {
	RSSURL          string
	NewsAPIURL      string
	NewsAPIKey      string
	MaxPerQuery     int
	MaxTotal        int
	NewsAPIPerQuery int
	DenyPatterns    []string
}

// Source reads the search feed for every topic, then tops up from NewsAPI.
type Source struct {
	cfg     Config
	fetcher sources.Fetcher
	parser  *gofeed.Parser
	filter  *filters.Filterer
	logger  *zerolog.Logger
	now     func() time.Time
}

// New creates the news source.
func New(cfg Config, fetcher sources.Fetcher, logger *zerolog.Logger) *Source {
	if cfg.RSSURL == "" {
		cfg.RSSURL = DefaultRSSURL
	}

	if cfg.NewsAPIURL == "" {
		cfg.NewsAPIURL = DefaultNewsAPIURL
	}

	if cfg.MaxPerQuery <= 0 {
		cfg.MaxPerQuery = defaultMaxPerQuery
	}

	if cfg.MaxTotal <= 0 {
		cfg.MaxTotal = defaultMaxTotal
	}

	if cfg.NewsAPIPerQuery <= 0 {
		cfg.NewsAPIPerQuery = defaultNewsAPIPerQuery
	}

	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &Source{
		cfg:     cfg,
		fetcher: fetcher,
		parser:  gofeed.NewParser(),
		filter:  filters.New(minTitleRunes, nil, cfg.DenyPatterns),
		logger:  logger,
		now:     time.Now,
	}
}

func (s *Source) Name() domain.Source { return domain.SourceGoogleNews }

func (s *Source) Windowed() bool { return true }

// Fetch collects feed items first and NewsAPI articles second, keeping the first
// occurrence of each URL. An error is returned only when nothing was collected.
func (s *Source) Fetch(ctx context.Context, q sources.Query) ([]domain.RawRecord, error) {
	days := q.DaysBack
	if days <= 0 {
		days = 1
	}

	set := dedup.NewSet[domain.RawRecord](s.cfg.MaxTotal, s.logger)

	var firstErr error

	collect := func(query string, fetch func(context.Context, string, int) ([]domain.RawRecord, error)) error {
		records, err := fetch(ctx, query, days)
		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("google news: %w", ctx.Err())
			}

			s.logger.Warn().Err(err).Str(logKeyQuery, query).Msg("google news query failed")

			if firstErr == nil {
				firstErr = err
			}

			return nil
		}

		for _, r := range records {
			set.Add(r)
		}

		return nil
	}

	for _, topic := range q.Topics {
		if set.Full() {
			break
		}

		if err := collect(topic, s.fetchFeed); err != nil {
			return nil, err
		}
	}

	if s.cfg.NewsAPIKey != "" {
		for _, topic := range q.Topics {
			if set.Full() {
				break
			}

			if err := collect(topic, s.fetchNewsAPI); err != nil {
				return nil, err
			}
		}
	}

	if set.Len() == 0 && firstErr != nil {
		return nil, firstErr
	}

	return set.Items(), nil
}

func (s *Source) feedURL(query string, days int) string {
	params := url.Values{}
	params.Set("q", query+" when:"+strconv.Itoa(days)+"d")
	params.Set("hl", "ko")
	params.Set("gl", "KR")
	params.Set("ceid", "KR:ko")

	return s.cfg.RSSURL + "?" + params.Encode()
}

func (s *Source) fetchFeed(ctx context.Context, query string, days int) ([]domain.RawRecord, error) {
	body, err := s.fetcher.Fetch(ctx, s.feedURL(query, days), nil)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %q: %w", query, err)
	}

	feed, err := s.parser.ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed %q: %w", query, err)
	}

	out := make([]domain.RawRecord, 0, s.cfg.MaxPerQuery)

	for _, item := range feed.Items {
		if len(out) >= s.cfg.MaxPerQuery {
			break
		}

		title := strings.TrimSpace(item.Title)
		if s.filter.IsFiltered(title) {
			continue
		}

		link := item.Link
		if link == "" {
			link = item.GUID
		}

		rec := domain.RawRecord{Title: title, URL: link, Source: domain.SourceGoogleNews}
		if item.PublishedParsed != nil {
			rec.UploadDate = item.PublishedParsed.UTC().Format(dateLayout)
		}

		out = append(out, rec)
	}

	return out, nil
}

type newsAPIResponse struct {
	Status   string           `json:"status"`
	Code     string           `json:"code"`
	Message  string           `json:"message"`
	Articles []newsAPIArticle `json:"articles"`
}

type newsAPIArticle struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"` //nolint:tagliatelle // NewsAPI uses camelCase
}

func (s *Source) fetchNewsAPI(ctx context.Context, query string, days int) ([]domain.RawRecord, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("from", s.now().UTC().AddDate(0, 0, -days).Format(dateLayout))
	params.Set("sortBy", "publishedAt")
	params.Set("pageSize", strconv.Itoa(min(s.cfg.NewsAPIPerQuery, newsAPIMaxPage)))

	header := http.Header{}
	header.Set(newsAPIAuthHeader, s.cfg.NewsAPIKey)

	body, err := s.fetcher.Fetch(ctx, s.cfg.NewsAPIURL+"?"+params.Encode(), header)
	if err != nil {
		return nil, fmt.Errorf("newsapi %q: %w", query, err)
	}

	var resp newsAPIResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse newsapi json: %w", err)
	}

	if resp.Status != newsAPIStatusOK {
		return nil, fmt.Errorf("%w: newsapi %s: %s", errors.ErrUpstreamAPI, resp.Code, resp.Message)
	}

	out := make([]domain.RawRecord, 0, len(resp.Articles))

	for _, a := range resp.Articles {
		title := strings.TrimSpace(a.Title)
		if title == "" || a.URL == "" {
			continue
		}

		date := a.PublishedAt
		if len(date) > dateLen {
			date = date[:dateLen]
		}

		out = append(out, domain.RawRecord{Title: title, URL: a.URL, Source: domain.SourceGoogleNews, UploadDate: date})
	}

	return out, nil
}
