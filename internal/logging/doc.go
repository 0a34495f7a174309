// Package logging assembles structured slog loggers and formatting helpers
// used across the pipeline.
//
// It owns the configurable console/JSON handlers, centralizes level and
// output plumbing, and exposes context-aware helpers so stage code can
// automatically tag log lines with the run ID, stage, and episode number.
// Prefer these constructors over hand-rolled slog setup so every component
// emits data with the same shape.
package logging
