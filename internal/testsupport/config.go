// Package testsupport provides shared fixtures for package tests.
package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"craftpress/internal/config"
	"craftpress/internal/tracker"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// Pacing and backoff delays are zeroed so tests never sleep.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.FilesDir = filepath.Join(base, "files")
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.ImagesDir = filepath.Join(base, "images")
	cfg.State.Backend = "json"
	cfg.Pipeline.RetryBaseDelaySeconds = 0
	cfg.Pipeline.RetryMaxDelaySeconds = 0
	cfg.Pipeline.AssetDelaySeconds = 0
	cfg.Pipeline.BatchDelaySeconds = 0
	cfg.OpenAI.APIKey = "test-key"
	cfg.MediaFire.Email = "test@example.com"
	cfg.MediaFire.Password = "secret"
	cfg.WordPress.URL = "https://blog.example.com"
	cfg.WordPress.Username = "tester"
	cfg.WordPress.AppPassword = "app-pass"

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	if err := os.MkdirAll(cfg.Paths.FilesDir, 0o755); err != nil {
		t.Fatalf("create files dir: %v", err)
	}
	return &cfg
}

// WithBackend selects the tracker persistence backend on the test config.
func WithBackend(backend string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.State.Backend = backend
	}
}

// MustOpenStore opens the configured tracker backend and closes it on cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config, opts ...tracker.Option) tracker.Store {
	t.Helper()
	store, err := tracker.Open(cfg, opts...)
	if err != nil {
		t.Fatalf("open tracker store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// WriteAsset drops a backlog file with placeholder content and returns its path.
func WriteAsset(t testing.TB, cfg *config.Config, name string) string {
	t.Helper()
	path := filepath.Join(cfg.Paths.FilesDir, name)
	if err := os.WriteFile(path, []byte("placeholder archive bytes"), 0o644); err != nil {
		t.Fatalf("write asset %s: %v", name, err)
	}
	return path
}
