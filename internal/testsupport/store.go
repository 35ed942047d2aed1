package testsupport

import (
	"context"
	"testing"

	"cardpress/internal/config"
	"cardpress/internal/runlog"
)

// MustOpenStore opens a runlog.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *runlog.Store {
	t.Helper()

	store, err := runlog.Open(cfg)
	if err != nil {
		t.Fatalf("runlog.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewItem creates a ledger item for tests using the provided store.
func NewItem(t testing.TB, store *runlog.Store, setID, setName, language string) *runlog.Item {
	t.Helper()

	item, err := store.NewItem(context.Background(), setID, setName, language)
	if err != nil {
		t.Fatalf("store.NewItem: %v", err)
	}
	return item
}
