// Package batch drives full-backlog runs: discovery, single-instance locking,
// per-asset pacing, and optional batch windows with a longer pause between
// them.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"craftpress/internal/asset"
	"craftpress/internal/config"
	"craftpress/internal/logging"
	"craftpress/internal/pipeline"
	"craftpress/internal/services"
	"craftpress/internal/tracker"
)

// ErrAlreadyRunning indicates another process holds the run lock.
var ErrAlreadyRunning = errors.New("another run is already in progress")

// Options controls one runner invocation.
type Options struct {
	// Dir overrides the backlog directory from configuration.
	Dir string
	// Force reprocesses assets that already have a success record.
	Force bool
	// Batched splits the backlog into windows of BatchSize with BatchDelay
	// pauses between them. Zero values fall back to configuration.
	Batched    bool
	BatchSize  int
	BatchDelay time.Duration
}

// Report summarizes one runner invocation.
type Report struct {
	RunID      string
	Discovered int
	Succeeded  int
	Failed     int
	Skipped    int
	// Cumulative reflects the record sets after the run, not just this session.
	Cumulative tracker.Stats
}

// Runner processes the backlog one asset at a time under a run lock.
type Runner struct {
	cfg     *config.Config
	store   tracker.Store
	orch    *pipeline.Orchestrator
	logger  *slog.Logger
	sleeper func(ctx context.Context, d time.Duration) error
}

// RunnerOption customizes runner construction.
type RunnerOption func(*Runner)

// WithSleeper overrides the pacing sleep, used by tests.
func WithSleeper(sleeper func(ctx context.Context, d time.Duration) error) RunnerOption {
	return func(r *Runner) {
		if sleeper != nil {
			r.sleeper = sleeper
		}
	}
}

// NewRunner constructs a runner over the given orchestrator and store.
func NewRunner(cfg *config.Config, store tracker.Store, orch *pipeline.Orchestrator, logger *slog.Logger, opts ...RunnerOption) (*Runner, error) {
	if cfg == nil || store == nil || orch == nil {
		return nil, errors.New("batch: config, store, and orchestrator are required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	r := &Runner{
		cfg:     cfg,
		store:   store,
		orch:    orch,
		logger:  logger,
		sleeper: sleepContext,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Run processes the pending backlog. It holds an exclusive file lock for the
// duration so concurrent invocations cannot interleave record-set writes.
// Cancellation is honored between assets; the in-flight asset's outcome is
// still recorded.
func (r *Runner) Run(ctx context.Context, opts Options) (Report, error) {
	lock := flock.New(filepath.Join(r.cfg.Paths.DataDir, "craftpress.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return Report{}, fmt.Errorf("acquire run lock: %w", err)
	}
	if !locked {
		return Report{}, ErrAlreadyRunning
	}
	defer func() {
		_ = lock.Unlock()
	}()

	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, r.logger)

	assets, err := Discover(ctx, r.cfg, r.store, opts.Dir, opts.Force)
	if err != nil {
		return Report{}, err
	}

	report := Report{RunID: runID, Discovered: len(assets)}
	logger.Info("run started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.Int("pending", len(assets)),
		logging.Bool("force", opts.Force),
		logging.Bool("batched", opts.Batched))

	if opts.Batched {
		err = r.runBatched(ctx, assets, opts, &report)
	} else {
		err = r.runWindow(ctx, assets, opts.Force, &report)
	}

	stats, statsErr := r.store.Stats(ctx)
	if statsErr == nil {
		report.Cumulative = stats
	} else if err == nil {
		err = fmt.Errorf("read cumulative stats: %w", statsErr)
	}

	logger.Info("run finished",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.Int("succeeded", report.Succeeded),
		logging.Int("failed", report.Failed),
		logging.Int("skipped", report.Skipped),
		logging.Int("total_processed", report.Cumulative.ProcessedCount),
		logging.Int("total_failed", report.Cumulative.FailedCount))

	return report, err
}

func (r *Runner) runBatched(ctx context.Context, assets []asset.Asset, opts Options, report *Report) error {
	size := opts.BatchSize
	if size <= 0 {
		size = r.cfg.Pipeline.BatchSize
	}
	if size <= 0 {
		size = 1
	}
	delay := opts.BatchDelay
	if delay <= 0 {
		delay = r.cfg.BatchDelay()
	}

	logger := logging.WithContext(ctx, r.logger)
	for start := 0; start < len(assets); start += size {
		end := min(start+size, len(assets))
		logger.Info("batch window started",
			logging.Int("window_start", start),
			logging.Int("window_size", end-start))

		if err := r.runWindow(ctx, assets[start:end], opts.Force, report); err != nil {
			return err
		}
		if end < len(assets) {
			if err := r.sleeper(ctx, delay); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Runner) runWindow(ctx context.Context, assets []asset.Asset, force bool, report *Report) error {
	for i, item := range assets {
		if err := ctx.Err(); err != nil {
			return err
		}

		outcome, err := r.orch.Process(ctx, item, force)
		if err != nil {
			return err
		}
		switch outcome.Status {
		case pipeline.StatusSucceeded:
			report.Succeeded++
		case pipeline.StatusFailed:
			report.Failed++
		case pipeline.StatusSkipped:
			report.Skipped++
		}

		if i < len(assets)-1 {
			if err := r.sleeper(ctx, r.cfg.AssetDelay()); err != nil {
				return err
			}
		}
	}
	return nil
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
