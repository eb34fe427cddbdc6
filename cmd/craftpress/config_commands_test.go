package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"craftpress/internal/tracker"
)

func TestConfigInitWritesSampleAndRefusesOverwrite(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	cmd := newConfigInitCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--path", target})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("config init: %v", err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample config: %v", err)
	}
	for _, section := range []string{"[paths]", "[openai]", "[mediafire]", "[wordpress]", "[pipeline]"} {
		if !strings.Contains(string(data), section) {
			t.Errorf("sample config missing section %s", section)
		}
	}

	again := newConfigInitCommand()
	again.SetOut(&out)
	again.SetArgs([]string{"--path", target})
	if err := again.Execute(); err == nil {
		t.Fatal("expected refusal to overwrite existing config")
	}

	force := newConfigInitCommand()
	force.SetOut(&out)
	force.SetArgs([]string{"--path", target, "--overwrite"})
	if err := force.Execute(); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestRenderVerdictLine(t *testing.T) {
	line := renderVerdictLine("wordpress", true, "reachable", false)
	if !strings.Contains(line, "wordpress") || !strings.Contains(line, "OK  reachable") {
		t.Fatalf("unexpected verdict line %q", line)
	}

	colored := renderVerdictLine("mediafire", false, "invalid credentials", true)
	if !strings.Contains(colored, ansiRed+"ERROR"+ansiReset) {
		t.Fatalf("expected colored verdict token, got %q", colored)
	}
	if strings.HasPrefix(colored, ansiRed) {
		t.Fatalf("only the verdict should be colored, got %q", colored)
	}
}

func TestRenderFailureTable(t *testing.T) {
	rendered := renderFailureTable([]tracker.FailedRecord{
		{
			Identity:      "Temp Page",
			Reason:        "insufficient data",
			AttemptCount:  2,
			LastAttemptAt: time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC),
		},
	})
	for _, want := range []string{"Asset", "Temp Page", "insufficient data", "2026-02-01T10:00:00Z"} {
		if !strings.Contains(rendered, want) {
			t.Errorf("rendered table missing %q:\n%s", want, rendered)
		}
	}
}
