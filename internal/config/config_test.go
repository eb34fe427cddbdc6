package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"craftpress/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaultsAndOverrides(t *testing.T) {
	path := writeConfig(t, `
[paths]
files_dir = "~/backlog"

[openai]
api_key = "sk-test"

[pipeline]
max_retries = 5
accepted_extensions = ["ZIP", ".pdf", ".zip"]
`)

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved == "" {
		t.Fatalf("expected resolved existing path, got %q exists=%v", resolved, exists)
	}
	if cfg.Pipeline.MaxRetries != 5 {
		t.Fatalf("override lost: %d", cfg.Pipeline.MaxRetries)
	}
	if cfg.Pipeline.BatchSize != 5 {
		t.Fatalf("default lost: %d", cfg.Pipeline.BatchSize)
	}
	if cfg.OpenAI.Model != "gpt-4o-mini" {
		t.Fatalf("default model lost: %q", cfg.OpenAI.Model)
	}
	if strings.HasPrefix(cfg.Paths.FilesDir, "~") || !filepath.IsAbs(cfg.Paths.FilesDir) {
		t.Fatalf("expected expanded absolute files_dir, got %q", cfg.Paths.FilesDir)
	}

	// Extensions are lowercased, dotted, and deduplicated.
	want := []string{".zip", ".pdf"}
	if len(cfg.Pipeline.AcceptedExtensions) != len(want) {
		t.Fatalf("expected %v, got %v", want, cfg.Pipeline.AcceptedExtensions)
	}
	for i := range want {
		if cfg.Pipeline.AcceptedExtensions[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, cfg.Pipeline.AcceptedExtensions)
		}
	}
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"bad backend", "[state]\nbackend = \"redis\"\n"},
		{"bad retries", "[pipeline]\nmax_retries = 0\n"},
		{"bad log format", "[logging]\nformat = \"xml\"\n"},
		{"bad default category", "[pipeline]\ndefault_category_id = 999\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, tc.content)
			if _, _, _, err := config.Load(path); err == nil {
				t.Fatalf("expected validation error for %s", tc.name)
			}
		})
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.toml")
	cfg, _, exists, err := config.Load(missing)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing file")
	}
	if cfg.Pipeline.MaxRetries != 3 || cfg.State.Backend != "json" {
		t.Fatalf("unexpected defaults: %+v", cfg.Pipeline)
	}
	if _, ok := cfg.DefaultCategory(); !ok {
		t.Fatal("default taxonomy must include the default category")
	}
}

func TestValidateCredentials(t *testing.T) {
	cfg := config.Default()
	err := cfg.ValidateCredentials()
	if err == nil {
		t.Fatal("expected missing-credential error")
	}
	for _, key := range []string{"openai.api_key", "mediafire.email", "wordpress.url"} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("expected %s in error, got %v", key, err)
		}
	}

	cfg.OpenAI.APIKey = "sk-test"
	cfg.MediaFire.Email = "user@example.com"
	cfg.MediaFire.Password = "secret"
	cfg.WordPress.URL = "https://blog.example.com"
	cfg.WordPress.Username = "user"
	cfg.WordPress.AppPassword = "pass"
	if err := cfg.ValidateCredentials(); err != nil {
		t.Fatalf("ValidateCredentials: %v", err)
	}
}
