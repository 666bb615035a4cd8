// Package schedule runs jobs on a cron expression in a fixed timezone.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	// Embed tzdata for environments without zoneinfo.
	_ "time/tzdata"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// DefaultTimezone is used when no timezone is configured.
const DefaultTimezone = "Asia/Seoul"

const (
	logFieldJob  = "job"
	logFieldNext = "next"
	logFieldTook = "took"
)

// Error messages.
const (
	errFmtInvalidTimezone = "invalid timezone: %w"
)

// Static errors for schedule validation.
var (
	ErrInvalidCron = errors.New("invalid cron expression")
)

var timezoneAliases = map[string]string{
	"KST":        "Asia/Seoul",
	"ROK":        "Asia/Seoul",
}

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Job is one scheduled unit of work.
type Job func(ctx context.Context) error

// Scheduler fires a job on a cron expression. Runs never overlap: a tick
// that arrives while the previous run is active is skipped.
type Scheduler struct {
	spec     string
	schedule cron.Schedule
	loc      *time.Location
	logger   *zerolog.Logger
}

// New validates the cron expression and timezone.
func New(spec, timezone string, logger *zerolog.Logger) (*Scheduler, error) {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	loc, err := time.LoadLocation(NormalizeTimezone(timezone))
	if err != nil {
		return nil, fmt.Errorf(errFmtInvalidTimezone, err)
	}

	sched, err := parser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidCron, spec, err)
	}

	return &Scheduler{spec: spec, schedule: sched, loc: loc, logger: logger}, nil
}

// NormalizeTimezone maps aliases to IANA names. Empty means DefaultTimezone.
func NormalizeTimezone(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return DefaultTimezone
	}

	if canonical, ok := timezoneAliases[value]; ok {
		return canonical
	}

	return value
}

// Location returns the timezone the cron expression is evaluated in.
func (s *Scheduler) Location() *time.Location {
	return s.loc
}

// Next returns the first activation strictly after t.
func (s *Scheduler) Next(t time.Time) time.Time {
	return s.schedule.Next(t.In(s.loc))
}

// Run fires job on every activation until ctx is done, then waits for a
// running job to finish. It always returns a wrapped ctx.Err().
func (s *Scheduler) Run(ctx context.Context, name string, job Job) error {
	adapter := cronLogger{logger: s.logger}

	c := cron.New(
		cron.WithLocation(s.loc),
		cron.WithParser(parser),
		cron.WithLogger(adapter),
		cron.WithChain(cron.Recover(adapter), cron.SkipIfStillRunning(adapter)),
	)

	if _, err := c.AddFunc(s.spec, func() { s.fire(ctx, name, job) }); err != nil {
		return fmt.Errorf("%w %q: %w", ErrInvalidCron, s.spec, err)
	}

	s.logger.Info().Str(logFieldJob, name).Time(logFieldNext, s.Next(time.Now())).Msg("scheduler started")

	c.Start()

	<-ctx.Done()

	<-c.Stop().Done()

	s.logger.Info().Str(logFieldJob, name).Msg("scheduler stopped")

	return fmt.Errorf("schedule %s: %w", name, ctx.Err())
}

func (s *Scheduler) fire(ctx context.Context, name string, job Job) {
	if ctx.Err() != nil {
		return
	}

	start := time.Now()

	if err := job(ctx); err != nil {
		s.logger.Error().Err(err).Str(logFieldJob, name).Dur(logFieldTook, time.Since(start)).Msg("scheduled job failed")
		return
	}

	s.logger.Info().Str(logFieldJob, name).Dur(logFieldTook, time.Since(start)).Time(logFieldNext, s.Next(time.Now())).Msg("scheduled job finished")
}

// cronLogger routes cron's internal logging to zerolog.
type cronLogger struct {
	logger *zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
