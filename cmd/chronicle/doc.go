// Package main hosts the chronicle CLI entrypoint and command graph.
//
// The Cobra-based command tree covers the daily pipeline run, rotation
// status, run history, configuration scaffolding, credential checks, and
// notification testing. It centralizes configuration resolution and
// structured logging setup so subcommands can focus on user experience
// instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
