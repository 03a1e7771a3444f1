package testsupport

import (
	"context"
	"testing"

	"shorepull/internal/config"
	"shorepull/internal/inventory"
)

// MustOpenStore opens an inventory.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *inventory.Store {
	t.Helper()

	store, err := inventory.Open(cfg)
	if err != nil {
		t.Fatalf("inventory.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewRecord inserts a pending record for tests using the provided store.
func NewRecord(t testing.TB, store *inventory.Store, rec *inventory.Record) *inventory.Record {
	t.Helper()

	inserted, err := store.Insert(context.Background(), rec)
	if err != nil {
		t.Fatalf("store.Insert: %v", err)
	}
	if !inserted {
		t.Fatalf("store.Insert: %s already present", rec.PackagePath)
	}
	stored, err := store.FindByPackagePath(context.Background(), rec.PackagePath)
	if err != nil {
		t.Fatalf("store.FindByPackagePath: %v", err)
	}
	if stored == nil {
		t.Fatalf("store.FindByPackagePath: %s not found after insert", rec.PackagePath)
	}
	return stored
}
