package services

import (
	"context"
	"strings"
)

type contextKey int

const (
	assetContextKey contextKey = iota
	stageContextKey
	runIDContextKey
)

// WithAsset attaches an asset identity to the context.
func WithAsset(ctx context.Context, identity string) context.Context {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return ctx
	}
	return context.WithValue(ctx, assetContextKey, identity)
}

// AssetFromContext extracts the asset identity from the context.
func AssetFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	identity, ok := ctx.Value(assetContextKey).(string)
	return identity, ok && identity != ""
}

// WithStage attaches a pipeline stage name to the context.
func WithStage(ctx context.Context, stage string) context.Context {
	stage = strings.TrimSpace(stage)
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageContextKey, stage)
}

// StageFromContext extracts the pipeline stage name from the context.
func StageFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	stage, ok := ctx.Value(stageContextKey).(string)
	return stage, ok && stage != ""
}

// WithRunID attaches a batch run identifier to the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	runID = strings.TrimSpace(runID)
	if runID == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDContextKey, runID)
}

// RunIDFromContext extracts the batch run identifier from the context.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	runID, ok := ctx.Value(runIDContextKey).(string)
	return runID, ok && runID != ""
}
