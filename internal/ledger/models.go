package ledger

import "time"

// Status represents the lifecycle of a pipeline run record.
type Status string

const (
	StatusSelected   Status = "selected"
	StatusRendering  Status = "rendering"
	StatusRendered   Status = "rendered"
	StatusPublishing Status = "publishing"
	StatusPublished  Status = "published"
	StatusFailed     Status = "failed"
)

var allStatuses = []Status{
	StatusSelected,
	StatusRendering,
	StatusRendered,
	StatusPublishing,
	StatusPublished,
	StatusFailed,
}

// Valid reports whether s is a known run status.
func (s Status) Valid() bool {
	for _, known := range allStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Record is one pipeline invocation persisted in SQLite. The rotation state
// file is authoritative for what content has been claimed; the ledger is
// the audit trail of what each run actually achieved.
type Record struct {
	ID            int64
	RunID         string
	Episode       int
	Kind          string
	FactIndex     int
	ShopIndex     *int
	Status        Status
	ArtifactPath  string
	VideoID       string
	ErrorCategory string
	ErrorMessage  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// SetFailed marks the record failed with the given category and message.
func (r *Record) SetFailed(category, message string) {
	r.Status = StatusFailed
	r.ErrorCategory = category
	r.ErrorMessage = message
}
