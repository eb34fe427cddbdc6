// Package cleanup removes aged maintenance artifacts: generated images,
// rotated log files, and stale failure records.
package cleanup

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"craftpress/internal/config"
	"craftpress/internal/logging"
	"craftpress/internal/tracker"
)

// activeLogName is the log file the process writes to; it is never removed.
const activeLogName = "craftpress.log"

// Options selects what to remove. A zero age skips that target entirely.
type Options struct {
	ImageAge  time.Duration
	LogAge    time.Duration
	FailedAge time.Duration
	// DryRun counts candidates without deleting anything.
	DryRun bool
}

// Report summarizes one cleanup pass.
type Report struct {
	ImagesRemoved int
	LogsRemoved   int
	RecordsPruned int
	BytesFreed    int64
}

// Run removes artifacts older than the configured ages. Failure records are
// pruned by last attempt so a persistently failing asset is retried fresh;
// processed records are never touched.
func Run(ctx context.Context, cfg *config.Config, store tracker.Store, logger *slog.Logger, opts Options) (Report, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	now := time.Now()
	var report Report

	if opts.ImageAge > 0 {
		removed, freed, err := removeOlderThan(cfg.Paths.ImagesDir, now.Add(-opts.ImageAge), nil, opts.DryRun)
		if err != nil {
			return report, err
		}
		report.ImagesRemoved = removed
		report.BytesFreed += freed
	}

	if opts.LogAge > 0 {
		removed, freed, err := removeOlderThan(cfg.Paths.LogDir, now.Add(-opts.LogAge),
			map[string]bool{activeLogName: true}, opts.DryRun)
		if err != nil {
			return report, err
		}
		report.LogsRemoved = removed
		report.BytesFreed += freed
	}

	if opts.FailedAge > 0 {
		cutoff := now.Add(-opts.FailedAge)
		pruned, err := pruneFailed(ctx, store, cutoff, opts.DryRun)
		if err != nil {
			return report, err
		}
		report.RecordsPruned = pruned
	}

	logger.Info("cleanup finished",
		logging.String(logging.FieldEventType, "cleanup_complete"),
		logging.Bool("dry_run", opts.DryRun),
		logging.Int("images_removed", report.ImagesRemoved),
		logging.Int("logs_removed", report.LogsRemoved),
		logging.Int("records_pruned", report.RecordsPruned),
		logging.Int64("bytes_freed", report.BytesFreed))

	return report, nil
}

func pruneFailed(ctx context.Context, store tracker.Store, cutoff time.Time, dryRun bool) (int, error) {
	if !dryRun {
		return store.PruneFailed(ctx, cutoff)
	}
	failed, err := store.ListFailed(ctx)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, record := range failed {
		if record.LastAttemptAt.Before(cutoff) {
			count++
		}
	}
	return count, nil
}

func removeOlderThan(dir string, cutoff time.Time, keep map[string]bool, dryRun bool) (int, int64, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, 0, nil
		}
		return 0, 0, fmt.Errorf("read %s: %w", dir, err)
	}

	removed := 0
	var freed int64
	for _, entry := range entries {
		if entry.IsDir() || keep[entry.Name()] {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return removed, freed, fmt.Errorf("stat %s: %w", entry.Name(), err)
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		if !dryRun {
			if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
				return removed, freed, fmt.Errorf("remove %s: %w", entry.Name(), err)
			}
		}
		removed++
		freed += info.Size()
	}
	return removed, freed, nil
}
