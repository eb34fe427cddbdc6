package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

const (
	processedFileName = "processed_records.json"
	failedFileName    = "failed_records.json"
)

// JSONStore persists the two record sets as independent JSON array files.
type JSONStore struct {
	processedPath string
	failedPath    string
	now           func() time.Time
}

// OpenJSON constructs a flat-file store rooted at dir.
func OpenJSON(dir string, opts ...Option) (*JSONStore, error) {
	if dir == "" {
		return nil, errors.New("tracker: data directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	o := buildOptions(opts)
	return &JSONStore{
		processedPath: filepath.Join(dir, processedFileName),
		failedPath:    filepath.Join(dir, failedFileName),
		now:           o.now,
	}, nil
}

func (s *JSONStore) IsProcessed(_ context.Context, identity string) (bool, error) {
	records, err := readRecords[ProcessedRecord](s.processedPath)
	if err != nil {
		return false, err
	}
	for _, record := range records {
		if record.Identity == identity {
			return true, nil
		}
	}
	return false, nil
}

func (s *JSONStore) MarkProcessed(ctx context.Context, identity string, artifacts Artifacts) error {
	processed, err := s.IsProcessed(ctx, identity)
	if err != nil {
		return err
	}
	if processed {
		return nil
	}
	records, err := readRecords[ProcessedRecord](s.processedPath)
	if err != nil {
		return err
	}
	records = append(records, ProcessedRecord{
		Identity:    identity,
		ProcessedAt: s.now(),
		HostingURL:  artifacts.HostingURL,
		PostURL:     artifacts.PostURL,
	})
	return writeRecords(s.processedPath, records)
}

func (s *JSONStore) MarkFailed(_ context.Context, identity, reason string, detail map[string]string) error {
	records, err := readRecords[FailedRecord](s.failedPath)
	if err != nil {
		return err
	}
	now := s.now()
	updated := false
	for i := range records {
		if records[i].Identity == identity {
			records[i].LastAttemptAt = now
			records[i].Reason = reason
			records[i].Detail = detail
			records[i].AttemptCount++
			updated = true
			break
		}
	}
	if !updated {
		records = append(records, FailedRecord{
			Identity:      identity,
			FirstFailedAt: now,
			LastAttemptAt: now,
			Reason:        reason,
			Detail:        detail,
			AttemptCount:  1,
		})
	}
	return writeRecords(s.failedPath, records)
}

func (s *JSONStore) ListProcessed(context.Context) ([]ProcessedRecord, error) {
	return readRecords[ProcessedRecord](s.processedPath)
}

func (s *JSONStore) ListFailed(context.Context) ([]FailedRecord, error) {
	return readRecords[FailedRecord](s.failedPath)
}

func (s *JSONStore) PruneFailed(_ context.Context, before time.Time) (int, error) {
	records, err := readRecords[FailedRecord](s.failedPath)
	if err != nil {
		return 0, err
	}
	kept := records[:0]
	for _, record := range records {
		if !record.LastAttemptAt.Before(before) {
			kept = append(kept, record)
		}
	}
	removed := len(records) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	if err := writeRecords(s.failedPath, kept); err != nil {
		return 0, err
	}
	return removed, nil
}

func (s *JSONStore) Stats(ctx context.Context) (Stats, error) {
	processed, err := s.ListProcessed(ctx)
	if err != nil {
		return Stats{}, err
	}
	failed, err := s.ListFailed(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		ProcessedCount: len(processed),
		FailedCount:    len(failed),
		TotalAttempts:  len(processed) + len(failed),
	}, nil
}

func (s *JSONStore) Close() error { return nil }

// readRecords loads a full record set. A missing or corrupt file reads as an
// empty set so a damaged persistence artifact never blocks processing.
func readRecords[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, nil
	}
	return records, nil
}

// writeRecords replaces the full record set atomically: write to a temp file
// in the same directory, fsync, then rename over the target.
func writeRecords[T any](path string, records []T) error {
	if records == nil {
		records = []T{}
	}
	content, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal records: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".craftpress-tmp-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}
