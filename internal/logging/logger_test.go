package logging_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"craftpress/internal/logging"
	"craftpress/internal/services"
)

func TestNewWritesConsoleFormat(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "out.log")
	logger, err := logging.New(logging.Options{
		Level:       "info",
		Format:      "console",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	componentLogger := logging.NewComponentLogger(logger, "pipeline")
	componentLogger.Info("asset published", logging.String("asset", "Pokemon_Pikachu"))

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	line := string(data)
	if !strings.Contains(line, "INFO") {
		t.Errorf("expected level label in %q", line)
	}
	if !strings.Contains(line, "pipeline: asset published") {
		t.Errorf("expected component prefix in %q", line)
	}
	if !strings.Contains(line, "asset=Pokemon_Pikachu") {
		t.Errorf("expected kv pair in %q", line)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestWithContextAttachesFields(t *testing.T) {
	ctx := services.WithAsset(context.Background(), "Pokemon_Pikachu")
	ctx = services.WithStage(ctx, "upload")
	ctx = services.WithRunID(ctx, "run-1")

	fields := logging.ContextFields(ctx)
	if len(fields) != 3 {
		t.Fatalf("expected 3 fields, got %d", len(fields))
	}

	keys := map[string]bool{}
	for _, field := range fields {
		keys[field.Key] = true
	}
	for _, want := range []string{logging.FieldAsset, logging.FieldStage, logging.FieldRunID} {
		if !keys[want] {
			t.Errorf("missing field %s", want)
		}
	}
}
