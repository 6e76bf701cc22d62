// Package testutil provides shared test fixtures backed by real storage.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/deductible/internal/storage"
)

// TestDB is a migrated in-memory database for one test.
type TestDB struct {
	Storage *storage.SQLiteStorage
	UserID  string
	t       *testing.T
}

// TestDBOptions seeds a test database.
type TestDBOptions struct {
	CustomSetup func(context.Context, *storage.SQLiteStorage) error
	Manual      map[string]bool   // transaction ID -> is business
	Categories  map[string]string // transaction ID -> deduction category
	UserID      string
	Enabled     []string // deduction categories to enable
}

// SetupTestDB creates a migrated in-memory database with the given
// categories enabled for the default user.
//
// Example:
//
//	db := testutil.SetupTestDB(t, reference.CategoryVehicles)
func SetupTestDB(t *testing.T, enabled ...string) *TestDB {
	t.Helper()
	return SetupTestDBWithOptions(t, TestDBOptions{Enabled: enabled})
}

// SetupTestDBWithOptions creates a test database seeded from opts. The
// database is closed when the test finishes.
func SetupTestDBWithOptions(t *testing.T, opts TestDBOptions) *TestDB {
	t.Helper()

	if opts.UserID == "" {
		opts.UserID = "default"
	}

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close test database: %v", err)
		}
	})

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	if err := store.InitializeToggles(ctx, opts.UserID, opts.Enabled); err != nil {
		t.Fatalf("failed to seed toggles: %v", err)
	}
	for id, isBusiness := range opts.Manual {
		if err := store.SetManualOverride(ctx, opts.UserID, id, isBusiness); err != nil {
			t.Fatalf("failed to seed manual override %q: %v", id, err)
		}
	}
	for id, category := range opts.Categories {
		if err := store.SetCategoryOverride(ctx, opts.UserID, id, category); err != nil {
			t.Fatalf("failed to seed category override %q: %v", id, err)
		}
	}

	if opts.CustomSetup != nil {
		if err := opts.CustomSetup(ctx, store); err != nil {
			t.Fatalf("custom setup failed: %v", err)
		}
	}

	return &TestDB{Storage: store, UserID: opts.UserID, t: t}
}

// MustEnable enables a deduction category or fails the test.
func (db *TestDB) MustEnable(category string) {
	db.t.Helper()
	if err := db.Storage.SetDeductionToggle(context.Background(), db.UserID, category, true); err != nil {
		db.t.Fatalf("failed to enable %q: %v", category, err)
	}
}
