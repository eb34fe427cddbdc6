package tracker

import (
	"context"
	"fmt"
	"time"

	"craftpress/internal/config"
)

// Store is the narrow read/write contract over the two record sets.
type Store interface {
	// IsProcessed reports whether a ProcessedRecord exists for the identity.
	IsProcessed(ctx context.Context, identity string) (bool, error)
	// MarkProcessed appends a success record. It is idempotent: a second call
	// for the same identity is a no-op.
	MarkProcessed(ctx context.Context, identity string, artifacts Artifacts) error
	// MarkFailed upserts a failure record: an existing record for the identity
	// gets its last-attempt timestamp, reason, and detail replaced and its
	// attempt counter incremented; otherwise a new record starts at attempt 1.
	MarkFailed(ctx context.Context, identity, reason string, detail map[string]string) error
	// ListProcessed returns success records in insertion order.
	ListProcessed(ctx context.Context) ([]ProcessedRecord, error)
	// ListFailed returns failure records in insertion order.
	ListFailed(ctx context.Context) ([]FailedRecord, error)
	// PruneFailed removes failure records whose last attempt is before the
	// cutoff and returns how many were removed. Processed records are never
	// pruned; they are the idempotency ledger.
	PruneFailed(ctx context.Context, before time.Time) (int, error)
	// Stats returns cumulative record counts.
	Stats(ctx context.Context) (Stats, error)
	Close() error
}

// Option customizes store construction.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the timestamp source (useful for tests).
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{now: func() time.Time { return time.Now().UTC() }}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Open constructs the store backend selected by the configuration.
func Open(cfg *config.Config, opts ...Option) (Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	switch cfg.State.Backend {
	case "sqlite":
		return OpenSQLite(cfg.Paths.DataDir, opts...)
	case "json", "":
		return OpenJSON(cfg.Paths.DataDir, opts...)
	default:
		return nil, fmt.Errorf("state backend: unsupported value %q", cfg.State.Backend)
	}
}
