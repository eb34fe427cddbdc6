package cleanup_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"craftpress/internal/cleanup"
	"craftpress/internal/testsupport"
	"craftpress/internal/tracker"
)

func writeAged(t *testing.T, dir, name string, age time.Duration) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("artifact bytes"), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	stamp := time.Now().Add(-age)
	if err := os.Chtimes(path, stamp, stamp); err != nil {
		t.Fatalf("age %s: %v", name, err)
	}
	return path
}

func TestRunRemovesOnlyAgedArtifacts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	ctx := context.Background()

	oldClock := func() time.Time { return time.Now().Add(-60 * 24 * time.Hour) }
	store := testsupport.MustOpenStore(t, cfg, tracker.WithClock(oldClock))
	if err := store.MarkFailed(ctx, "Stale_Model", "upload failed", nil); err != nil {
		t.Fatalf("seed stale failure: %v", err)
	}
	freshStore := testsupport.MustOpenStore(t, cfg)
	if err := freshStore.MarkFailed(ctx, "Recent_Model", "upload failed", nil); err != nil {
		t.Fatalf("seed recent failure: %v", err)
	}

	oldImage := writeAged(t, cfg.Paths.ImagesDir, "stale_model.png", 60*24*time.Hour)
	freshImage := writeAged(t, cfg.Paths.ImagesDir, "recent_model.png", time.Hour)
	writeAged(t, cfg.Paths.LogDir, "craftpress.log.1", 30*24*time.Hour)
	activeLog := writeAged(t, cfg.Paths.LogDir, "craftpress.log", 30*24*time.Hour)

	report, err := cleanup.Run(ctx, cfg, freshStore, nil, cleanup.Options{
		ImageAge:  30 * 24 * time.Hour,
		LogAge:    7 * 24 * time.Hour,
		FailedAge: 30 * 24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.ImagesRemoved != 1 || report.LogsRemoved != 1 || report.RecordsPruned != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
	if report.BytesFreed == 0 {
		t.Fatal("expected freed bytes to be counted")
	}

	if _, err := os.Stat(oldImage); !os.IsNotExist(err) {
		t.Fatalf("stale image should be gone, stat err=%v", err)
	}
	if _, err := os.Stat(freshImage); err != nil {
		t.Fatalf("recent image must survive: %v", err)
	}
	if _, err := os.Stat(activeLog); err != nil {
		t.Fatalf("active log must survive regardless of age: %v", err)
	}

	failed, err := freshStore.ListFailed(ctx)
	if err != nil {
		t.Fatalf("ListFailed: %v", err)
	}
	if len(failed) != 1 || failed[0].Identity != "Recent_Model" {
		t.Fatalf("expected only the recent failure to remain, got %+v", failed)
	}
}

func TestRunDryRunDeletesNothing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	ctx := context.Background()

	oldClock := func() time.Time { return time.Now().Add(-60 * 24 * time.Hour) }
	store := testsupport.MustOpenStore(t, cfg, tracker.WithClock(oldClock))
	if err := store.MarkFailed(ctx, "Stale_Model", "upload failed", nil); err != nil {
		t.Fatalf("seed stale failure: %v", err)
	}
	oldImage := writeAged(t, cfg.Paths.ImagesDir, "stale_model.png", 60*24*time.Hour)

	report, err := cleanup.Run(ctx, cfg, store, nil, cleanup.Options{
		ImageAge:  30 * 24 * time.Hour,
		FailedAge: 30 * 24 * time.Hour,
		DryRun:    true,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.ImagesRemoved != 1 || report.RecordsPruned != 1 {
		t.Fatalf("dry run must still count candidates, got %+v", report)
	}

	if _, err := os.Stat(oldImage); err != nil {
		t.Fatalf("dry run must not delete files: %v", err)
	}
	failed, err := store.ListFailed(ctx)
	if err != nil {
		t.Fatalf("ListFailed: %v", err)
	}
	if len(failed) != 1 {
		t.Fatalf("dry run must not prune records, got %+v", failed)
	}
}

func TestRunZeroAgesSkipEverything(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	writeAged(t, cfg.Paths.ImagesDir, "stale_model.png", 365*24*time.Hour)

	report, err := cleanup.Run(context.Background(), cfg, store, nil, cleanup.Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report != (cleanup.Report{}) {
		t.Fatalf("expected empty report, got %+v", report)
	}
}
