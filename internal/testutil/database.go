// Package testutil provides shared test fixtures: an in-memory database
// wired through the real migrations, and deterministic fakes for the
// external collaborators.
package testutil

import (
	"context"
	"testing"

	"github.com/wunderfauks/receiptguard/internal/model"
	"github.com/wunderfauks/receiptguard/internal/storage"
)

// TestDB wraps an in-memory SQLite store for one test.
type TestDB struct {
	Storage *storage.SQLiteStorage
	t       *testing.T
}

// SetupTestDB creates a migrated in-memory database and registers cleanup.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{Storage: store, t: t}
}

// SeedCampaign saves a campaign and returns its id, failing the test on
// error.
func (db *TestDB) SeedCampaign(campaign model.Campaign, maxRedemptions int) int64 {
	db.t.Helper()

	id, err := db.Storage.SaveCampaign(context.Background(), campaign, maxRedemptions)
	if err != nil {
		db.t.Fatalf("failed to seed campaign %q: %v", campaign.Title, err)
	}
	return id
}

// Redeem records n redemptions for a user, failing the test on error.
func (db *TestDB) Redeem(campaignID int64, userID string, n int) {
	db.t.Helper()

	for i := 0; i < n; i++ {
		if err := db.Storage.RecordRedemption(context.Background(), campaignID, userID); err != nil {
			db.t.Fatalf("failed to record redemption: %v", err)
		}
	}
}
