// Package worker runs batches of named tasks one after another with
// cancellation, per-task timeouts and panic recovery.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

const (
	logFieldWorker = "worker"
	logFieldTask   = "task"
	logFieldTook   = "took"
)

// Task is one named unit of work.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// Config configures a sequence run.
type Config struct {
	// Name identifies the worker for logging.
	Name string

	Tasks []Task

	// Timeout bounds each task. Zero means no per-task timeout.
	Timeout time.Duration

	// Pause is the delay between consecutive tasks.
	Pause time.Duration

	// OnError is called when a task fails.
	// Return true to continue with the next task, false to stop.
	OnError func(task string, err error) bool

	Logger *zerolog.Logger
}

// Summary lists the outcome of a sequence run.
type Summary struct {
	Succeeded []string
	Failed    map[string]error
}

// RunSequence runs the tasks in order. A failed or panicking task does not
// stop the sequence unless OnError says so. Returns a wrapped ctx.Err() when
// the context is canceled between tasks.
func RunSequence(ctx context.Context, cfg Config) (Summary, error) {
	logger := cfg.Logger
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	summary := Summary{Failed: map[string]error{}}

	for i, task := range cfg.Tasks {
		if err := checkCanceled(ctx, cfg.Name); err != nil {
			return summary, err
		}

		if i > 0 {
			if err := Wait(ctx, cfg.Pause); err != nil {
				return summary, err
			}
		}

		start := time.Now()

		err := runSafe(ctx, cfg.Timeout, task)
		if err == nil {
			summary.Succeeded = append(summary.Succeeded, task.Name)
			logger.Debug().Str(logFieldWorker, cfg.Name).Str(logFieldTask, task.Name).Dur(logFieldTook, time.Since(start)).Msg("task finished")

			continue
		}

		summary.Failed[task.Name] = err

		if cfg.OnError != nil {
			if !cfg.OnError(task.Name, err) {
				return summary, fmt.Errorf("worker %s stopped at %s: %w", cfg.Name, task.Name, err)
			}

			continue
		}

		logger.Error().Err(err).Str(logFieldWorker, cfg.Name).Str(logFieldTask, task.Name).Msg("task failed")
	}

	return summary, nil
}

func runSafe(ctx context.Context, timeout time.Duration, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task %s panicked: %v", task.Name, r)
		}
	}()

	if timeout <= 0 {
		return task.Run(ctx)
	}

	return RunWithTimeout(ctx, timeout, task.Run)
}

func checkCanceled(ctx context.Context, name string) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("worker %s: %w", name, ctx.Err())
	default:
		return nil
	}
}

// Wait blocks until duration elapses or context is canceled.
// Returns a wrapped context error if context is canceled.
func Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	select {
	case <-ctx.Done():
		return fmt.Errorf("wait interrupted: %w", ctx.Err())
	case <-time.After(d):
		return nil
	}
}

// RunWithTimeout runs fn with a timeout derived from the parent context.
// The function receives a context that will be canceled after timeout.
func RunWithTimeout(ctx context.Context, timeout time.Duration, fn func(ctx context.Context) error) error {
	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return fn(timeoutCtx)
}
