package preflight_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"craftpress/internal/preflight"
)

func TestCheckDirectoryAccess(t *testing.T) {
	dir := t.TempDir()
	result := preflight.CheckDirectoryAccess("data directory", dir)
	if !result.Passed {
		t.Fatalf("expected pass for %s, got %+v", dir, result)
	}

	missing := preflight.CheckDirectoryAccess("data directory", filepath.Join(dir, "absent"))
	if missing.Passed {
		t.Fatalf("expected failure for missing directory, got %+v", missing)
	}
}

type stubChecker struct {
	name string
	err  error
}

func (s stubChecker) Name() string                     { return s.name }
func (s stubChecker) HealthCheck(context.Context) error { return s.err }

func TestCheckServiceVerdicts(t *testing.T) {
	healthy := preflight.CheckService(context.Background(), stubChecker{name: "wordpress"})
	if !healthy.Passed || healthy.Name != "wordpress" {
		t.Fatalf("expected healthy verdict, got %+v", healthy)
	}

	failing := preflight.CheckService(context.Background(), stubChecker{name: "mediafire", err: errors.New("invalid credentials")})
	if failing.Passed {
		t.Fatalf("expected failing verdict, got %+v", failing)
	}
	if failing.Detail != "invalid credentials" {
		t.Fatalf("expected error detail, got %q", failing.Detail)
	}

	if preflight.AllPassed([]preflight.Result{healthy, failing}) {
		t.Fatal("AllPassed must be false when any check fails")
	}
}
