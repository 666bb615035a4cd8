// Package app provides the main application bootstrap and runtime orchestration.
//
// The App type wires together all dependencies and exposes methods to run
// different operational modes:
//
//   - Refresh mode: one collection and publish cycle for a category
//   - Export mode: writes the published dataset to a spreadsheet
//   - Serve mode: static web page, health checks and metrics
//   - Schedule mode: cron-driven refreshes plus the serve endpoints
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/lueurxax/aggro-radar/internal/core/errors"
	"github.com/lueurxax/aggro-radar/internal/core/links"
	"github.com/lueurxax/aggro-radar/internal/keywords"
	"github.com/lueurxax/aggro-radar/internal/output/snapshot"
	"github.com/lueurxax/aggro-radar/internal/output/spreadsheet"
	"github.com/lueurxax/aggro-radar/internal/platform/config"
	"github.com/lueurxax/aggro-radar/internal/platform/observability"
	"github.com/lueurxax/aggro-radar/internal/platform/schedule"
	"github.com/lueurxax/aggro-radar/internal/platform/worker"
	"github.com/lueurxax/aggro-radar/internal/process/pipeline"
	"github.com/lueurxax/aggro-radar/internal/process/scoring"
	"github.com/lueurxax/aggro-radar/internal/process/similarity"
	"github.com/lueurxax/aggro-radar/internal/sources"
	"github.com/lueurxax/aggro-radar/internal/sources/googlenews"
	"github.com/lueurxax/aggro-radar/internal/sources/naver"
	"github.com/lueurxax/aggro-radar/internal/sources/youtube"
)

const (
	scheduleJobName = "refresh"
	refreshTimeout  = 15 * time.Minute
	refreshPause    = 5 * time.Second

	logFieldCategory  = "category"
	logFieldRunID     = "run_id"
	logFieldPublished = "published"
	logFieldStatus    = "status"
	logFieldPath      = "path"
	logFieldFailed    = "failed"
)

// App holds the application dependencies and provides methods to run different modes.
type App struct {
	cfg    *config.Config
	dict   *keywords.Dictionary
	store  *snapshot.Store
	logger *zerolog.Logger

	refreshPause time.Duration
}

// New loads the keyword catalogue and prepares the snapshot store.
func New(cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	dict, err := keywords.Load(cfg.KeywordsDir, logger)
	if err != nil {
		return nil, fmt.Errorf("load keyword catalogue: %w", err)
	}

	return &App{
		cfg:          cfg,
		dict:         dict,
		store:        snapshot.NewStore(cfg.SnapshotPath, cfg.PublishTopN, logger),
		logger:       logger,
		refreshPause: refreshPause,
	}, nil
}

// Categories returns the catalogue in menu order.
func (a *App) Categories() []keywords.Category {
	return a.dict.Categories()
}

// NewPipeline wires the sources, ranking and publishing stages.
func (a *App) NewPipeline() (*pipeline.Pipeline, error) {
	strategy, err := similarity.NewStrategy(a.cfg.SimilarityStrategy, a.cfg.SimilarityMinCommon, a.cfg.SimilarityMinRatio)
	if err != nil {
		return nil, err
	}

	deps := pipeline.Deps{
		Catalogue: a.dict,
		Sources:   a.sources(),
		Collector: sources.NewCollector(a.cfg.ExpandWindows, a.cfg.MinResults, a.logger),
		Ranker:    scoring.NewScorer(a.dict.Tiers()),
		Linker:    similarity.NewLinker(strategy, a.cfg.MaxSecondary, a.logger),
		Store:     a.store,
		TopN:      a.cfg.TopN,
	}

	if a.cfg.ExportOnRefresh {
		deps.Exporter = a.exporter()
	}

	return pipeline.New(deps, a.logger), nil
}

func (a *App) sources() []sources.Source {
	fetcher := links.NewWebFetcher(a.cfg.FetchRPS, a.cfg.HTTPTimeout)

	return []sources.Source{
		youtube.New(youtube.Config{
			APIKey:      a.cfg.YouTubeAPIKey,
			Endpoint:    a.cfg.YouTubeEndpoint,
			MaxPerQuery: a.cfg.VideoMaxPerQuery,
			MaxTotal:    a.cfg.VideoMaxTotal,
			MinViews:    a.cfg.VideoMinViews,
		}, fetcher.Client(), a.logger),
		googlenews.New(googlenews.Config{
			RSSURL:          a.cfg.GoogleNewsRSSURL,
			NewsAPIURL:      a.cfg.NewsAPIURL,
			NewsAPIKey:      a.cfg.NewsAPIKey,
			MaxPerQuery:     a.cfg.NewsMaxPerQuery,
			MaxTotal:        a.cfg.NewsMaxTotal,
			NewsAPIPerQuery: a.cfg.NewsMaxPerQuery,
			DenyPatterns:    a.cfg.TitleDenyPatterns,
		}, fetcher, a.logger),
		naver.New(naver.Config{
			RankingURL:   a.cfg.NaverRankingURL,
			SearchURL:    a.cfg.NaverSearchURL,
			ClientID:     a.cfg.NaverClientID,
			ClientSecret: a.cfg.NaverClientSecret,
			PerSection:   a.cfg.RankingPerSection,
			TotalLimit:   a.cfg.RankingTotalLimit,
			APIPerQuery:  a.cfg.NewsMaxPerQuery,
			DenyPatterns: a.cfg.TitleDenyPatterns,
		}, fetcher, a.logger),
	}
}

func (a *App) exporter() *spreadsheet.Exporter {
	return spreadsheet.New(a.cfg.SpreadsheetDir, a.cfg.SpreadsheetTopN, a.logger)
}

// RunRefresh refreshes one category. An empty collection is reported in the
// returned error and leaves the published dataset untouched.
func (a *App) RunRefresh(ctx context.Context, category string) (pipeline.Report, error) {
	p, err := a.NewPipeline()
	if err != nil {
		return pipeline.Report{}, err
	}

	report, err := p.Refresh(ctx, category)
	if err != nil {
		return report, err
	}

	a.logger.Info().
		Str(logFieldRunID, report.RunID).
		Str(logFieldCategory, report.Category).
		Int(logFieldPublished, report.Published).
		Interface(logFieldStatus, report.Status).
		Msg("refresh complete")

	return report, nil
}

// RunExport writes the published dataset to a new spreadsheet.
func (a *App) RunExport(_ context.Context) (string, error) {
	records, err := a.store.Load()
	if err != nil {
		return "", fmt.Errorf("load published dataset: %w", err)
	}

	path, err := a.exporter().Export(records)
	if err != nil {
		return "", fmt.Errorf("export spreadsheet: %w", err)
	}

	a.logger.Info().Str(logFieldPath, path).Msg("spreadsheet written")

	return path, nil
}

// RunServe serves the web page, health checks and metrics until ctx is canceled.
func (a *App) RunServe(ctx context.Context) error {
	a.logger.Info().Msg("Starting serve mode")

	srv := observability.NewServer(a.cfg.HTTPPort, a.cfg.WebDir, a.store.Check, a.logger)

	return srv.Start(ctx)
}

// RunSchedule refreshes the scheduled categories on every cron activation and
// serves the web page meanwhile. With once set it refreshes a single time and
// returns without serving.
func (a *App) RunSchedule(ctx context.Context, once bool) error {
	categories, err := a.scheduledCategories()
	if err != nil {
		return err
	}

	p, err := a.NewPipeline()
	if err != nil {
		return err
	}

	job := func(ctx context.Context) error {
		return a.refreshAll(ctx, p, categories)
	}

	if once {
		return job(ctx)
	}

	sched, err := schedule.New(a.cfg.ScheduleCron, a.cfg.ScheduleTimezone, a.logger)
	if err != nil {
		return fmt.Errorf("configure schedule: %w", err)
	}

	go func() {
		if err := a.RunServe(ctx); err != nil {
			a.logger.Error().Err(err).Msg("http server error")
		}
	}()

	return sched.Run(ctx, scheduleJobName, job)
}

// continueAfter logs a failed category refresh. A snapshot that cannot be
// written stops the remaining categories, which write the same file.
func (a *App) continueAfter(category string, err error) bool {
	a.logger.Error().Err(err).Str(logFieldCategory, category).Msg("category refresh failed")

	return !errors.Is(err, errors.ErrSnapshotWrite)
}

func (a *App) scheduledCategories() ([]string, error) {
	if len(a.cfg.ScheduleCategories) == 0 {
		return a.dict.Labels(), nil
	}

	labels := make([]string, 0, len(a.cfg.ScheduleCategories))

	for _, c := range a.cfg.ScheduleCategories {
		cat, err := a.dict.Resolve(c)
		if err != nil {
			return nil, err
		}

		labels = append(labels, cat.Label)
	}

	return labels, nil
}

// refreshAll refreshes categories one at a time. Categories without records
// are not failures; the job fails only when every category failed.
func (a *App) refreshAll(ctx context.Context, p *pipeline.Pipeline, categories []string) error {
	tasks := make([]worker.Task, len(categories))

	for i, label := range categories {
		tasks[i] = worker.Task{Name: label, Run: func(ctx context.Context) error {
			_, err := p.Refresh(ctx, label)
			if errors.Is(err, errors.ErrNoRecords) {
				a.logger.Warn().Str(logFieldCategory, label).Msg("no records collected")
				return nil
			}

			return err
		}}
	}

	summary, err := worker.RunSequence(ctx, worker.Config{
		Name:    scheduleJobName,
		Tasks:   tasks,
		Timeout: refreshTimeout,
		Pause:   a.refreshPause,
		OnError: a.continueAfter,
		Logger:  a.logger,
	})
	if err != nil {
		return err
	}

	if len(summary.Failed) > 0 {
		a.logger.Warn().Int(logFieldFailed, len(summary.Failed)).Msg("some categories failed to refresh")
	}

	if len(categories) > 0 && len(summary.Failed) == len(categories) {
		return fmt.Errorf("all %d categories failed to refresh", len(categories))
	}

	return nil
}
