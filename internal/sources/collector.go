package sources

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/lueurxax/aggro-radar/internal/platform/observability"
)

// Default collection windows in days and the result count that stops widening.
var DefaultWindows = []int{1, 3, 7, 30}

const (
	DefaultMinResults = 5

	logKeySource   = "source"
	logKeyDaysBack = "days_back"
	logKeyCount    = "count"
)

// Collector fetches a source over progressively wider date windows until it
// returns enough records.
type Collector struct {
	windows    []int
	minResults int
	logger     *zerolog.Logger
}

// NewCollector creates a Collector. Empty windows fall back to DefaultWindows.
func NewCollector(windows []int, minResults int, logger *zerolog.Logger) *Collector {
	if len(windows) == 0 {
		windows = DefaultWindows
	}

	if minResults <= 0 {
		minResults = DefaultMinResults
	}

	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &Collector{
		windows:    append([]int(nil), windows...),
		minResults: minResults,
		logger:     logger,
	}
}

// Collect runs src and never panics or returns an error directly: failures are
// carried in Result.Err. For windowed sources the first attempt with at least
// minResults records wins; otherwise the last successful attempt is returned.
// Sources without a window are fetched once with the widest window.
func (c *Collector) Collect(ctx context.Context, src Source, q Query) (res Result) {
	res.Source = src.Name()

	defer func() {
		if r := recover(); r != nil {
			res = Result{Source: src.Name(), Err: fmt.Errorf("source panic: %v", r)}
		}

		if res.Err != nil {
			observability.SourceFailures.WithLabelValues(string(res.Source)).Inc()
			c.logger.Warn().Err(res.Err).Str(logKeySource, string(res.Source)).Msg("source failed")

			return
		}

		observability.RecordsCollected.WithLabelValues(string(res.Source)).Add(float64(len(res.Records)))
	}()

	windows := c.windows
	if !src.Windowed() {
		windows = windows[len(windows)-1:]
	}

	var (
		lastErr   error
		succeeded bool
	)

	for _, days := range windows {
		if err := ctx.Err(); err != nil {
			lastErr = err
			break
		}

		q.DaysBack = days

		records, err := src.Fetch(ctx, q)
		if err != nil {
			lastErr = err
			c.logger.Debug().Err(err).Str(logKeySource, string(res.Source)).Int(logKeyDaysBack, days).Msg("collection attempt failed")

			continue
		}

		succeeded = true
		res.Records = records
		res.DaysBack = days

		if len(records) >= c.minResults {
			break
		}
	}

	if !succeeded {
		res.Records = nil
		res.Err = lastErr

		return res
	}

	c.logger.Info().
		Str(logKeySource, string(res.Source)).
		Int(logKeyDaysBack, res.DaysBack).
		Int(logKeyCount, len(res.Records)).
		Msg("collected records")

	return res
}
