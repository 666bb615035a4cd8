package config

import (
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/lueurxax/aggro-radar/internal/core/errors"
	"github.com/lueurxax/aggro-radar/internal/process/similarity"
)

// Test environment variable keys.
const (
	testEnvTopN       = "TOP_N"
	testEnvStrategy   = "SIMILARITY_STRATEGY"
	testEnvWindows    = "EXPAND_WINDOWS"
	testEnvYouTubeKey = "YOUTUBE_API_KEY"
	testEnvSchedule   = "SCHEDULE_CATEGORIES"
	testEnvDeny       = "TITLE_DENY_PATTERNS"
)

const testErrLoad = "Load() error = %v"

func clearEnv(t *testing.T, keys ...string) {
	t.Helper()

	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t, "APP_ENV", testEnvTopN, testEnvStrategy, testEnvWindows, "SNAPSHOT_PATH", "PUBLISH_TOP_N",
		"HTTP_PORT", "HTTP_TIMEOUT", "VIDEO_MIN_VIEWS", testEnvSchedule, "SCHEDULE_CRON")

	cfg, err := Load()
	if err != nil {
		t.Fatalf(testErrLoad, err)
	}

	if !cfg.IsLocal() {
		t.Errorf("AppEnv default = %q, want local", cfg.AppEnv)
	}

	if cfg.TopN != 30 {
		t.Errorf("TopN default = %d, want 30", cfg.TopN)
	}

	if cfg.PublishTopN != 0 {
		t.Errorf("PublishTopN default = %d, want 0", cfg.PublishTopN)
	}

	if cfg.SimilarityStrategy != similarity.StrategyWordOverlap {
		t.Errorf("SimilarityStrategy default = %q", cfg.SimilarityStrategy)
	}

	if !reflect.DeepEqual(cfg.ExpandWindows, []int{1, 3, 7, 30}) {
		t.Errorf("ExpandWindows default = %v", cfg.ExpandWindows)
	}

	if cfg.SnapshotPath != "web/data.js" {
		t.Errorf("SnapshotPath default = %q", cfg.SnapshotPath)
	}

	if cfg.HTTPPort != 8000 {
		t.Errorf("HTTPPort default = %d, want 8000", cfg.HTTPPort)
	}

	if cfg.HTTPTimeout != 15*time.Second {
		t.Errorf("HTTPTimeout default = %v", cfg.HTTPTimeout)
	}

	if cfg.VideoMinViews != 100000 {
		t.Errorf("VideoMinViews default = %d", cfg.VideoMinViews)
	}

	if cfg.ScheduleCron != "0 */6 * * *" {
		t.Errorf("ScheduleCron default = %q", cfg.ScheduleCron)
	}

	if len(cfg.ScheduleCategories) != 0 {
		t.Errorf("ScheduleCategories default = %v, want empty", cfg.ScheduleCategories)
	}
}

func TestLoad_TrimsCredentialsAndCategories(t *testing.T) {
	t.Setenv(testEnvYouTubeKey, "  key-123 \n")
	t.Setenv(testEnvSchedule, "정치, 경제 ,,")
	t.Setenv(testEnvDeny, "[광고],[AD]")

	cfg, err := Load()
	if err != nil {
		t.Fatalf(testErrLoad, err)
	}

	if cfg.YouTubeAPIKey != "key-123" {
		t.Errorf("YouTubeAPIKey = %q, want trimmed", cfg.YouTubeAPIKey)
	}

	if !reflect.DeepEqual(cfg.ScheduleCategories, []string{"정치", "경제"}) {
		t.Errorf("ScheduleCategories = %v", cfg.ScheduleCategories)
	}

	if !reflect.DeepEqual(cfg.TitleDenyPatterns, []string{"[광고]", "[AD]"}) {
		t.Errorf("TitleDenyPatterns = %v", cfg.TitleDenyPatterns)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "zero top n", key: testEnvTopN, value: "0"},
		{name: "unknown strategy", key: testEnvStrategy, value: "cosine"},
		{name: "negative window", key: testEnvWindows, value: "1,-3"},
		{name: "non numeric top n", key: testEnvTopN, value: "many"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			if _, err := Load(); err == nil {
				t.Errorf("expected error for %s=%q", tt.key, tt.value)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{TopN: 10, SimilarityStrategy: similarity.StrategySequenceRatio, ExpandWindows: []int{7}}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	cfg.SimilarityStrategy = "cosine"
	if err := cfg.Validate(); !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("Validate() unknown strategy error = %v, want ErrInvalidInput", err)
	}

	cfg.SimilarityStrategy = similarity.StrategyWordOverlap
	cfg.ExpandWindows = nil
	if err := cfg.Validate(); !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("Validate() error = %v, want ErrInvalidInput", err)
	}
}
