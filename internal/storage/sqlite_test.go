package storage_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wunderfauks/receiptguard/internal/common"
	"github.com/wunderfauks/receiptguard/internal/model"
	"github.com/wunderfauks/receiptguard/internal/storage"
	"github.com/wunderfauks/receiptguard/internal/testutil"
)

func TestNewSQLiteStorageRequiresPath(t *testing.T) {
	_, err := storage.NewSQLiteStorage("")
	require.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestDuplicateHashRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)

	known, err := db.Storage.CheckDuplicateHash(ctx, "abc123")
	require.NoError(t, err)
	assert.False(t, known)

	require.NoError(t, db.Storage.RecordHash(ctx, "abc123", "receipt-1"))

	known, err = db.Storage.CheckDuplicateHash(ctx, "abc123")
	require.NoError(t, err)
	assert.True(t, known)

	// Re-recording the same pair is a no-op.
	require.NoError(t, db.Storage.RecordHash(ctx, "abc123", "receipt-1"))

	_, err = db.Storage.CheckDuplicateHash(ctx, "")
	require.Error(t, err)
}

func TestCampaignRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)

	rate := 2.0
	campaign := model.Campaign{
		Title:   "Double Points",
		BrandID: "brand-7",
		Rules: []model.CampaignRule{{
			ID:       "r1",
			Label:    "All receipts",
			Priority: 5,
			Then: []model.AwardAction{{
				Action: model.ActionAwardPoints,
				Mode:   "per_dollar",
				Rate:   &rate,
			}},
		}},
	}

	id := db.SeedCampaign(campaign, 100)
	require.NotZero(t, id)

	campaigns, err := db.Storage.FetchActiveCampaigns(ctx)
	require.NoError(t, err)
	require.Len(t, campaigns, 1)

	loaded := campaigns[0]
	assert.Equal(t, id, loaded.CampaignPostID)
	assert.Equal(t, "Double Points", loaded.Title)
	assert.Equal(t, "brand-7", loaded.BrandID)
	require.Len(t, loaded.Rules, 1)
	assert.Equal(t, "r1", loaded.Rules[0].ID)
	assert.Equal(t, 5, loaded.Rules[0].Priority)
	require.NotNil(t, loaded.Rules[0].Then[0].Rate)
	assert.InDelta(t, 2.0, *loaded.Rules[0].Then[0].Rate, 1e-9)
}

func TestRedemptionCounts(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)

	id := db.SeedCampaign(model.Campaign{Title: "Scarce"}, 3)

	counts, err := db.Storage.GetRedemptionCount(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 3, counts.Max)
	assert.Equal(t, 0, counts.Count)

	db.Redeem(id, "user-1", 2)
	db.Redeem(id, "user-2", 1)

	counts, err = db.Storage.GetRedemptionCount(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 3, counts.Count)

	userCount, err := db.Storage.GetUserRedemptionCount(ctx, id, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, userCount)

	userCount, err = db.Storage.GetUserRedemptionCount(ctx, id, "user-3")
	require.NoError(t, err)
	assert.Equal(t, 0, userCount)

	// Unknown campaigns are an explicit error so callers can fail open.
	_, err = db.Storage.GetRedemptionCount(ctx, 9999)
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestPersistResults(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)

	result := model.FraudResult{
		Score:    85,
		Decision: model.DecisionReject,
		Reasons:  []string{"AI-generated image detected"},
		Details:  map[string]any{"image_count": float64(2)},
	}
	require.NoError(t, db.Storage.PersistFraudResult(ctx, "receipt-1", result))

	loaded, err := db.Storage.GetFraudResult(ctx, "receipt-1")
	require.NoError(t, err)
	assert.Equal(t, result, loaded)

	payload := model.SuggestionPayload{
		Matched:              true,
		TotalSuggestedPoints: 40,
		Suggestions: []model.RuleSuggestion{{
			CampaignPostID:  1,
			RuleID:          "r1",
			SuggestedPoints: 40,
			Matched:         true,
			SlotAvailable:   true,
		}},
	}
	require.NoError(t, db.Storage.PersistCampaignSuggestion(ctx, "receipt-1", payload))

	require.ErrorIs(t, db.Storage.PersistFraudResult(ctx, "", result), common.ErrMissingReceiptID)
	require.ErrorIs(t, db.Storage.PersistCampaignSuggestion(ctx, "", payload), common.ErrMissingReceiptID)

	// Queued suggestions are immutable: re-submitting the same receipt is
	// rejected rather than replacing the pending review.
	err = db.Storage.PersistCampaignSuggestion(ctx, "receipt-1", payload)
	require.ErrorIs(t, err, common.ErrDuplicateEntry)
}
