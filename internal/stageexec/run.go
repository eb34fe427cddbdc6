// Package stageexec is the single retry locus of the pipeline. Stage
// operations themselves are single-shot; Run wraps one in attempt accounting,
// exponential backoff, and stage-scoped logging.
package stageexec

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"craftpress/internal/logging"
	"craftpress/internal/services"
)

// Operation is one single-shot stage attempt.
type Operation func(ctx context.Context) error

// Options controls stage execution and retry behavior.
type Options struct {
	Logger      *slog.Logger
	StageName   string
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	// Sleeper overrides the backoff sleep, used by tests. The default sleeps
	// on a timer and honors context cancellation.
	Sleeper func(ctx context.Context, d time.Duration) error
}

// Run executes the operation with retries. The delay before attempt k doubles
// from BaseDelay and caps at MaxDelay. The returned error is the final
// attempt's error wrapped with the attempt count.
func Run(ctx context.Context, opts Options, op Operation) error {
	if op == nil {
		return fmt.Errorf("stage operation unavailable: %s", opts.StageName)
	}
	maxAttempts := opts.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	sleeper := opts.Sleeper
	if sleeper == nil {
		sleeper = sleepContext
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	stageCtx := services.WithStage(ctx, opts.StageName)
	stageLogger := logging.WithContext(stageCtx, logger)

	delay := opts.BaseDelay
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			stageLogger.Warn(
				"retrying stage",
				logging.Int("attempt", attempt),
				logging.Int("max_attempts", maxAttempts),
				logging.Duration("delay", delay),
				logging.Error(lastErr),
			)
			if err := sleeper(stageCtx, delay); err != nil {
				return err
			}
			delay *= 2
			if opts.MaxDelay > 0 && delay > opts.MaxDelay {
				delay = opts.MaxDelay
			}
		}

		if err := stageCtx.Err(); err != nil {
			return err
		}

		lastErr = op(stageCtx)
		if lastErr == nil {
			if attempt > 1 {
				stageLogger.Info("stage recovered", logging.Int("attempt", attempt))
			}
			return nil
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", opts.StageName, maxAttempts, lastErr)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
