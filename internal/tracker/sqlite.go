package tracker

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists the record sets in a single SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// OpenSQLite initializes or connects to the state database under dir.
func OpenSQLite(dir string, opts ...Option) (*SQLiteStore, error) {
	dbPath := filepath.Join(dir, "state.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	o := buildOptions(opts)
	store := &SQLiteStore{db: db, path: dbPath, now: o.now}
	if err := store.applySchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) applySchema(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS processed_records (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    identity TEXT NOT NULL UNIQUE,
    processed_at TEXT NOT NULL,
    hosting_url TEXT NOT NULL DEFAULT '',
    post_url TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS failed_records (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    identity TEXT NOT NULL UNIQUE,
    first_failed_at TEXT NOT NULL,
    last_attempt_at TEXT NOT NULL,
    reason TEXT NOT NULL,
    detail_json TEXT,
    attempt_count INTEGER NOT NULL DEFAULT 1
);`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) IsProcessed(ctx context.Context, identity string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM processed_records WHERE identity = ?`, identity,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("query processed record: %w", err)
	}
	return count > 0, nil
}

func (s *SQLiteStore) MarkProcessed(ctx context.Context, identity string, artifacts Artifacts) error {
	timestamp := s.now().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO processed_records (identity, processed_at, hosting_url, post_url)
         VALUES (?, ?, ?, ?)
         ON CONFLICT(identity) DO NOTHING`,
		identity, timestamp, artifacts.HostingURL, artifacts.PostURL,
	)
	if err != nil {
		return fmt.Errorf("insert processed record: %w", err)
	}
	return nil
}

func (s *SQLiteStore) MarkFailed(ctx context.Context, identity, reason string, detail map[string]string) error {
	timestamp := s.now().Format(time.RFC3339Nano)
	var detailJSON any
	if len(detail) > 0 {
		data, err := json.Marshal(detail)
		if err != nil {
			return fmt.Errorf("marshal detail: %w", err)
		}
		detailJSON = string(data)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO failed_records (identity, first_failed_at, last_attempt_at, reason, detail_json, attempt_count)
         VALUES (?, ?, ?, ?, ?, 1)
         ON CONFLICT(identity) DO UPDATE SET
             last_attempt_at = excluded.last_attempt_at,
             reason = excluded.reason,
             detail_json = excluded.detail_json,
             attempt_count = attempt_count + 1`,
		identity, timestamp, timestamp, reason, detailJSON,
	)
	if err != nil {
		return fmt.Errorf("upsert failed record: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListProcessed(ctx context.Context) ([]ProcessedRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT identity, processed_at, hosting_url, post_url
         FROM processed_records ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("query processed records: %w", err)
	}
	defer rows.Close()

	var records []ProcessedRecord
	for rows.Next() {
		var record ProcessedRecord
		var processedAt string
		if err := rows.Scan(&record.Identity, &processedAt, &record.HostingURL, &record.PostURL); err != nil {
			return nil, fmt.Errorf("scan processed record: %w", err)
		}
		record.ProcessedAt, err = parseTimestamp(processedAt)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func (s *SQLiteStore) ListFailed(ctx context.Context) ([]FailedRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT identity, first_failed_at, last_attempt_at, reason, detail_json, attempt_count
         FROM failed_records ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("query failed records: %w", err)
	}
	defer rows.Close()

	var records []FailedRecord
	for rows.Next() {
		var record FailedRecord
		var firstFailedAt, lastAttemptAt string
		var detailJSON sql.NullString
		if err := rows.Scan(&record.Identity, &firstFailedAt, &lastAttemptAt, &record.Reason, &detailJSON, &record.AttemptCount); err != nil {
			return nil, fmt.Errorf("scan failed record: %w", err)
		}
		record.FirstFailedAt, err = parseTimestamp(firstFailedAt)
		if err != nil {
			return nil, err
		}
		record.LastAttemptAt, err = parseTimestamp(lastAttemptAt)
		if err != nil {
			return nil, err
		}
		if detailJSON.Valid && detailJSON.String != "" {
			if err := json.Unmarshal([]byte(detailJSON.String), &record.Detail); err != nil {
				return nil, fmt.Errorf("decode detail for %s: %w", record.Identity, err)
			}
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func (s *SQLiteStore) PruneFailed(ctx context.Context, before time.Time) (int, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM failed_records WHERE last_attempt_at < ?`,
		before.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("prune failed records: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count pruned records: %w", err)
	}
	return int(removed), nil
}

func (s *SQLiteStore) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM processed_records`,
	).Scan(&stats.ProcessedCount)
	if err != nil {
		return Stats{}, fmt.Errorf("count processed records: %w", err)
	}
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM failed_records`,
	).Scan(&stats.FailedCount)
	if err != nil {
		return Stats{}, fmt.Errorf("count failed records: %w", err)
	}
	stats.TotalAttempts = stats.ProcessedCount + stats.FailedCount
	return stats, nil
}

func parseTimestamp(value string) (time.Time, error) {
	ts, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", value, err)
	}
	return ts, nil
}
