// Package youtube collects popular videos through the YouTube Data API v3.
package youtube

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"

	"github.com/lueurxax/aggro-radar/internal/core/domain"
	"github.com/lueurxax/aggro-radar/internal/core/errors"
	"github.com/lueurxax/aggro-radar/internal/process/dedup"
	"github.com/lueurxax/aggro-radar/internal/sources"
)

const (
	watchURLPrefix = "https://www.youtube.com/watch?v="
	searchType     = "video"
	searchLanguage = "ko"
	maxVideoIDs    = 50
	dateLen        = 10

	defaultMaxPerQuery = 3
	defaultMaxTotal    = 10
	defaultMinViews    = 100000

	logKeyQuery = "query"
)

var (
	partSnippet           = []string{"snippet"}
	partSnippetStatistics = []string{"snippet", "statistics"}
)

// Config holds the video collection settings.
type Config struct {
	APIKey string
	// Endpoint overrides the API base URL.
	Endpoint    string
	MaxPerQuery int
	MaxTotal    int
	MinViews    uint64
}

// Source searches recent videos for every topic and keeps those above MinViews.
type Source struct {
	cfg    Config
	client *http.Client
	logger *zerolog.Logger
	now    func() time.Time
}

// New creates the video source. The client carries rate limiting and timeouts.
func New(cfg Config, client *http.Client, logger *zerolog.Logger) *Source {
	if cfg.MaxPerQuery <= 0 {
		cfg.MaxPerQuery = defaultMaxPerQuery
	}

	if cfg.MaxTotal <= 0 {
		cfg.MaxTotal = defaultMaxTotal
	}

	if cfg.MinViews == 0 {
		cfg.MinViews = defaultMinViews
	}

	if client == nil {
		client = http.DefaultClient
	}

	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &Source{cfg: cfg, client: client, logger: logger, now: time.Now}
}

func (s *Source) Name() domain.Source { return domain.SourceVideo }

func (s *Source) Windowed() bool { return true }

// Fetch searches every topic in order until MaxTotal unique videos are found.
// Failing topics are skipped; an error is returned only when nothing was collected.
func (s *Source) Fetch(ctx context.Context, q sources.Query) ([]domain.RawRecord, error) {
	if strings.TrimSpace(s.cfg.APIKey) == "" {
		return nil, fmt.Errorf("%w: YOUTUBE_API_KEY is not set", errors.ErrMissingCredentials)
	}

	opts := []option.ClientOption{option.WithHTTPClient(s.client)}
	if s.cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(s.cfg.Endpoint))
	}

	svc, err := yt.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}

	days := q.DaysBack
	if days <= 0 {
		days = 1
	}

	publishedAfter := s.now().UTC().AddDate(0, 0, -days).Format(time.RFC3339)
	set := dedup.NewSet[domain.RawRecord](s.cfg.MaxTotal, s.logger)

	var firstErr error

	for _, topic := range q.Topics {
		if set.Full() {
			break
		}

		records, err := s.searchTopic(ctx, svc, topic, publishedAfter)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("youtube search: %w", ctx.Err())
			}

			s.logger.Warn().Err(err).Str(logKeyQuery, topic).Msg("youtube search failed")

			if firstErr == nil {
				firstErr = err
			}

			continue
		}

		for _, r := range records {
			set.Add(r)
		}
	}

	if set.Len() == 0 && firstErr != nil {
		return nil, firstErr
	}

	return set.Items(), nil
}

func (s *Source) searchTopic(ctx context.Context, svc *yt.Service, topic, publishedAfter string) ([]domain.RawRecord, error) {
	key := googleapi.QueryParameter("key", s.cfg.APIKey)

	resp, err := svc.Search.List(partSnippet).
		Q(topic).
		Type(searchType).
		MaxResults(int64(s.cfg.MaxPerQuery)).
		PublishedAfter(publishedAfter).
		RelevanceLanguage(searchLanguage).
		Context(ctx).
		Do(key)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", topic, err)
	}

	ids := make([]string, 0, len(resp.Items))

	for _, item := range resp.Items {
		if item.Id != nil && item.Id.VideoId != "" {
			ids = append(ids, item.Id.VideoId)
		}
	}

	if len(ids) == 0 {
		return nil, nil
	}

	if len(ids) > maxVideoIDs {
		ids = ids[:maxVideoIDs]
	}

	videos, err := svc.Videos.List(partSnippetStatistics).Id(ids...).Context(ctx).Do(key)
	if err != nil {
		return nil, fmt.Errorf("video details: %w", err)
	}

	out := make([]domain.RawRecord, 0, len(videos.Items))

	for _, v := range videos.Items {
		if v.Statistics == nil || v.Statistics.ViewCount < s.cfg.MinViews {
			continue
		}

		views := int64(v.Statistics.ViewCount) //nolint:gosec // view counts fit in int64

		rec := domain.RawRecord{
			URL:    watchURLPrefix + v.Id,
			Source: domain.SourceVideo,
			Views:  &views,
		}

		if v.Snippet != nil {
			rec.Title = strings.TrimSpace(v.Snippet.Title)
			rec.UploadDate = datePrefix(v.Snippet.PublishedAt)
		}

		out = append(out, rec)
	}

	return out, nil
}

func datePrefix(ts string) string {
	if len(ts) < dateLen {
		return ts
	}

	return ts[:dateLen]
}
