// Package pipeline runs one category refresh: collect, deduplicate, rank,
// link similar news, merge into the persisted dataset and publish.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lueurxax/aggro-radar/internal/core/domain"
	"github.com/lueurxax/aggro-radar/internal/core/errors"
	"github.com/lueurxax/aggro-radar/internal/keywords"
	"github.com/lueurxax/aggro-radar/internal/platform/observability"
	"github.com/lueurxax/aggro-radar/internal/process/dedup"
	"github.com/lueurxax/aggro-radar/internal/process/merge"
	"github.com/lueurxax/aggro-radar/internal/process/scoring"
	"github.com/lueurxax/aggro-radar/internal/sources"
)

const DefaultTopN = 30

// Log field constants
const (
	LogFieldRunID     = "run_id"
	LogFieldCategory  = "category"
	LogFieldSource    = "source"
	LogFieldCount     = "count"
	LogFieldUnique    = "unique"
	LogFieldDropped   = "dropped"
	LogFieldSelected  = "selected"
	LogFieldLinked    = "linked"
	LogFieldKept      = "kept"
	LogFieldRemoved   = "removed"
	LogFieldPublished = "published"
	LogFieldPath      = "path"
)

// Refresh outcomes used as metric labels.
const (
	outcomeOK      = "ok"
	outcomeEmpty   = "empty"
	outcomeFailed  = "failed"
	outcomeInvalid = "invalid"
)

type Catalogue interface {
	Resolve(input string) (keywords.Category, error)
}

type Collector interface {
	Collect(ctx context.Context, src sources.Source, q sources.Query) sources.Result
}

type Ranker interface {
	Rank(records []domain.RawRecord, title scoring.TitleFunc) []domain.ScoredRecord
}

type Linker interface {
	Link(top []domain.ScoredRecord, pool []domain.RawRecord) []domain.EnrichedRecord
}

type SnapshotStore interface {
	Load() ([]domain.EnrichedRecord, error)
	Save(records []domain.EnrichedRecord, status domain.StatusMap) error
}

type Exporter interface {
	Export(records []domain.EnrichedRecord) (string, error)
}

// Deps holds the collaborators of a Pipeline. Exporter is optional.
type Deps struct {
	Catalogue Catalogue
	Sources   []sources.Source
	Collector Collector
	Ranker    Ranker
	Linker    Linker
	Store     SnapshotStore
	Exporter  Exporter
	TopN      int
}

type Pipeline struct {
	deps   Deps
	topN   int
	newID  func() string
	logger *zerolog.Logger
}

// Report summarises one refresh.
type Report struct {
	RunID      string
	Category   string
	Status     domain.StatusMap
	Collected  map[domain.Source]int
	Unique     int
	Duplicates int
	Selected   int
	Linked     int
	Kept       int
	Removed    int
	Published  int
	ExportPath string
	Duration   time.Duration
}

func New(deps Deps, logger *zerolog.Logger) *Pipeline {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	topN := deps.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}

	return &Pipeline{
		deps:   deps,
		topN:   topN,
		newID:  uuid.NewString,
		logger: logger,
	}
}

// Refresh replaces the records of one category in the published dataset.
// Source failures are recorded in the report status and do not fail the
// refresh. When no source produced a record, nothing is published and the
// returned error wraps ErrNoRecords. Similar news are linked from the whole
// collection, before cross-source deduplication.
func (p *Pipeline) Refresh(ctx context.Context, category string) (report Report, err error) {
	start := time.Now()
	report = Report{
		RunID:     p.newID(),
		Status:    domain.StatusMap{},
		Collected: map[domain.Source]int{},
	}

	cat, err := p.deps.Catalogue.Resolve(category)
	if err != nil {
		observability.RefreshesTotal.WithLabelValues(category, outcomeInvalid).Inc()
		return report, err
	}

	report.Category = cat.Label
	logger := p.logger.With().Str(LogFieldRunID, report.RunID).Str(LogFieldCategory, cat.Label).Logger()

	defer func() {
		report.Duration = time.Since(start)
		observability.RefreshDuration.WithLabelValues(cat.Label).Observe(report.Duration.Seconds())
	}()

	logger.Info().Msg("refresh started")

	collected := p.collect(ctx, cat, &report, &logger)

	if err = ctx.Err(); err != nil {
		observability.RefreshesTotal.WithLabelValues(cat.Label, outcomeFailed).Inc()
		return report, fmt.Errorf("refresh %s: %w", cat.Label, err)
	}

	unique := dedup.UniqueFull(collected, 0, &logger)
	report.Unique = len(unique.Items)
	report.Duplicates = unique.DroppedCount
	observability.DuplicatesDropped.Add(float64(unique.DroppedCount))

	logger.Info().Int(LogFieldUnique, report.Unique).Int(LogFieldDropped, report.Duplicates).Msg("deduplicated collection")

	if len(unique.Items) == 0 {
		observability.RefreshesTotal.WithLabelValues(cat.Label, outcomeEmpty).Inc()
		logger.Warn().Msg("no records collected, keeping published dataset")

		return report, fmt.Errorf("refresh %s: %w", cat.Label, errors.ErrNoRecords)
	}

	ranked := p.deps.Ranker.Rank(unique.Items, scoring.ByTitle)
	for i := range ranked {
		ranked[i].Category = cat.Label
	}

	top := ranked
	if len(top) > p.topN {
		top = top[:p.topN]
	}

	report.Selected = len(top)

	enriched := p.deps.Linker.Link(top, collected)
	for _, r := range enriched {
		if len(r.Secondary) > 0 {
			report.Linked++
		}
	}

	observability.LinkedRecords.Add(float64(report.Linked))
	logger.Info().Int(LogFieldSelected, report.Selected).Int(LogFieldLinked, report.Linked).Msg("ranked and linked records")

	if err = p.publish(cat.Label, enriched, &report, &logger); err != nil {
		observability.RefreshesTotal.WithLabelValues(cat.Label, outcomeFailed).Inc()
		return report, err
	}

	observability.RefreshesTotal.WithLabelValues(cat.Label, outcomeOK).Inc()

	return report, nil
}

func (p *Pipeline) collect(ctx context.Context, cat keywords.Category, report *Report, logger *zerolog.Logger) []domain.RawRecord {
	q := sources.Query{Topics: cat.Queries(), Section: cat.RankingSection()}

	var all []domain.RawRecord

	for _, src := range p.deps.Sources {
		res := p.deps.Collector.Collect(ctx, src, q)

		report.Status[res.Source] = res.Status()
		report.Collected[res.Source] = len(res.Records)

		logger.Info().Str(LogFieldSource, string(res.Source)).Int(LogFieldCount, len(res.Records)).Msg("source collected")

		for _, r := range res.Records {
			r.Category = cat.Label
			all = append(all, r)
		}
	}

	return all
}

func (p *Pipeline) publish(category string, fresh []domain.EnrichedRecord, report *Report, logger *zerolog.Logger) error {
	persisted, err := p.deps.Store.Load()
	if err != nil {
		logger.Warn().Err(err).Msg("failed to load published dataset, starting empty")

		persisted = nil
	}

	merged := merge.Merge(persisted, fresh, category)
	report.Kept = merged.Kept
	report.Removed = merged.Removed
	report.Published = len(merged.Records)

	if err := p.deps.Store.Save(merged.Records, report.Status); err != nil {
		return fmt.Errorf("save dataset: %w", err)
	}

	for label, n := range merge.CountByCategory(merged.Records) {
		observability.PublishedRecords.WithLabelValues(label).Set(float64(n))
	}

	logger.Info().
		Int(LogFieldKept, report.Kept).
		Int(LogFieldRemoved, report.Removed).
		Int(LogFieldPublished, report.Published).
		Msg("dataset published")

	if p.deps.Exporter == nil {
		return nil
	}

	path, err := p.deps.Exporter.Export(merged.Records)
	if err != nil {
		logger.Warn().Err(err).Msg("spreadsheet export failed")
		return nil
	}

	report.ExportPath = path
	logger.Info().Str(LogFieldPath, path).Msg("spreadsheet exported")

	return nil
}
