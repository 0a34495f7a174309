package testsupport

import (
	"context"
	"testing"

	"github.com/Arsalank7862/caffeine-chronicles/internal/config"
	"github.com/Arsalank7862/caffeine-chronicles/internal/ledger"
	"github.com/Arsalank7862/caffeine-chronicles/internal/rotation"
)

// MustOpenLedger opens a ledger.Store for tests and registers cleanup.
func MustOpenLedger(t testing.TB, cfg *config.Config) *ledger.Store {
	t.Helper()

	store, err := ledger.Open(cfg)
	if err != nil {
		t.Fatalf("ledger.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewRun inserts a run record for tests using the provided store.
func NewRun(t testing.TB, store *ledger.Store, runID string, episode rotation.Episode) *ledger.Record {
	t.Helper()

	record, err := store.NewRun(context.Background(), runID, episode)
	if err != nil {
		t.Fatalf("store.NewRun: %v", err)
	}
	return record
}
