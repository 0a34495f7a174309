// Package services provides shared helpers for the external service
// boundaries: error classification sentinels, the Wrap helper that tags
// failures for exit-code mapping, and context annotations that let loggers
// pick up the run ID, stage, and episode number automatically.
package services
