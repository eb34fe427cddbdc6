// Package logging provides slog-based structured logging for craftpress.
//
// Two output formats are supported: a compact console format for interactive
// use and JSON for machine consumption. Helpers attach standardized fields
// (component, asset, stage, run id) so pipeline events can be correlated
// across a run.
package logging
