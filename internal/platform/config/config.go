package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/lueurxax/aggro-radar/internal/core/errors"
	"github.com/lueurxax/aggro-radar/internal/process/similarity"
)

type Config struct {
	AppEnv      string `env:"APP_ENV" envDefault:"local"`
	KeywordsDir string `env:"KEYWORDS_DIR"`

	// Credentials. A missing key disables the matching source or API.
	YouTubeAPIKey     string `env:"YOUTUBE_API_KEY"`
	NewsAPIKey        string `env:"NEWS_API_KEY"`
	NaverClientID     string `env:"NAVER_CLIENT_ID"`
	NaverClientSecret string `env:"NAVER_CLIENT_SECRET"`

	// Endpoint overrides, empty means the public endpoint.
	YouTubeEndpoint  string        `env:"YOUTUBE_ENDPOINT"`
	GoogleNewsRSSURL string        `env:"GOOGLE_NEWS_RSS_URL"`
	NewsAPIURL       string        `env:"NEWS_API_URL"`
	NaverRankingURL  string        `env:"NAVER_RANKING_URL"`
	NaverSearchURL   string        `env:"NAVER_SEARCH_URL"`
	HTTPTimeout      time.Duration `env:"HTTP_TIMEOUT" envDefault:"15s"`
	FetchRPS         float64       `env:"FETCH_RPS" envDefault:"2"`

	// Collection
	VideoMaxPerQuery  int      `env:"VIDEO_MAX_PER_QUERY" envDefault:"3"`
	VideoMaxTotal     int      `env:"VIDEO_MAX_TOTAL" envDefault:"10"`
	VideoMinViews     uint64   `env:"VIDEO_MIN_VIEWS" envDefault:"100000"`
	NewsMaxPerQuery   int      `env:"NEWS_MAX_PER_QUERY" envDefault:"5"`
	NewsMaxTotal      int      `env:"NEWS_MAX_TOTAL" envDefault:"10"`
	RankingPerSection int      `env:"RANKING_PER_SECTION" envDefault:"5"`
	RankingTotalLimit int      `env:"RANKING_TOTAL_LIMIT" envDefault:"10"`
	MinResults        int      `env:"MIN_RESULTS" envDefault:"5"`
	ExpandWindows     []int    `env:"EXPAND_WINDOWS" envDefault:"1,3,7,30" envSeparator:","`
	TitleDenyPatterns []string `env:"TITLE_DENY_PATTERNS" envSeparator:","`

	// Ranking and linking
	TopN                int     `env:"TOP_N" envDefault:"30"`
	SimilarityStrategy  string  `env:"SIMILARITY_STRATEGY" envDefault:"word_overlap"`
	SimilarityMinCommon int     `env:"SIMILARITY_MIN_COMMON" envDefault:"2"`
	SimilarityMinRatio  float64 `env:"SIMILARITY_MIN_RATIO" envDefault:"0.5"`
	MaxSecondary        int     `env:"MAX_SECONDARY" envDefault:"2"`

	// Publishing
	SnapshotPath    string `env:"SNAPSHOT_PATH" envDefault:"web/data.js"`
	PublishTopN     int    `env:"PUBLISH_TOP_N" envDefault:"0"`
	SpreadsheetDir  string `env:"SPREADSHEET_DIR" envDefault:"xlsx"`
	SpreadsheetTopN int    `env:"SPREADSHEET_TOP_N" envDefault:"30"`
	ExportOnRefresh bool   `env:"EXPORT_ON_REFRESH" envDefault:"false"`

	// Serving and scheduling
	WebDir             string   `env:"WEB_DIR" envDefault:"web"`
	HTTPPort           int      `env:"HTTP_PORT" envDefault:"8000"`
	ScheduleCron       string   `env:"SCHEDULE_CRON" envDefault:"0 */6 * * *"`
	ScheduleTimezone   string   `env:"SCHEDULE_TIMEZONE" envDefault:"Asia/Seoul"`
	ScheduleCategories []string `env:"SCHEDULE_CATEGORIES" envSeparator:","`
}

func Load() (*Config, error) {
	_ = godotenv.Load() //nolint:errcheck // .env file is optional, error is expected when not present

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment config: %w", err)
	}

	trimCredentials(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects settings the refresh cannot run with.
func (c *Config) Validate() error {
	if c.TopN <= 0 {
		return fmt.Errorf("%w: TOP_N must be positive, got %d", errors.ErrInvalidInput, c.TopN)
	}

	if c.PublishTopN < 0 {
		return fmt.Errorf("%w: PUBLISH_TOP_N must not be negative", errors.ErrInvalidInput)
	}

	if _, err := similarity.NewStrategy(c.SimilarityStrategy, c.SimilarityMinCommon, c.SimilarityMinRatio); err != nil {
		return fmt.Errorf("SIMILARITY_STRATEGY: %w", err)
	}

	if len(c.ExpandWindows) == 0 {
		return fmt.Errorf("%w: EXPAND_WINDOWS is empty", errors.ErrInvalidInput)
	}

	for _, w := range c.ExpandWindows {
		if w <= 0 {
			return fmt.Errorf("%w: EXPAND_WINDOWS must be positive, got %d", errors.ErrInvalidInput, w)
		}
	}

	return nil
}

// IsLocal reports whether the process runs on a developer machine.
func (c *Config) IsLocal() bool {
	return c.AppEnv == "local"
}

func trimCredentials(cfg *Config) {
	for _, target := range []*string{&cfg.YouTubeAPIKey, &cfg.NewsAPIKey, &cfg.NaverClientID, &cfg.NaverClientSecret} {
		*target = strings.TrimSpace(*target)
	}

	cats := cfg.ScheduleCategories[:0]
	for _, c := range cfg.ScheduleCategories {
		if c = strings.TrimSpace(c); c != "" {
			cats = append(cats, c)
		}
	}

	cfg.ScheduleCategories = cats
}
