// Package ledger records each pipeline invocation in SQLite: the episode
// that was selected, how far the run got, and the publish outcome. The
// rotation state file remains the source of truth for claimed content; the
// ledger exists for the status and history commands and for operators
// diagnosing a failed day.
package ledger
