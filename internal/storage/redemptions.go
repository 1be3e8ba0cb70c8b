package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/wunderfauks/receiptguard/internal/common"
	"github.com/wunderfauks/receiptguard/internal/service"
)

// GetRedemptionCount returns a campaign's global redemption cap and how many
// redemptions it has accumulated.
func (s *SQLiteStorage) GetRedemptionCount(ctx context.Context, campaignID int64) (service.RedemptionCount, error) {
	var counts service.RedemptionCount

	err := s.db.QueryRowContext(ctx,
		"SELECT max_redemptions FROM campaigns WHERE id = ?", campaignID).Scan(&counts.Max)
	if errors.Is(err, sql.ErrNoRows) {
		return counts, fmt.Errorf("campaign %d: %w", campaignID, common.ErrNotFound)
	}
	if err != nil {
		return counts, fmt.Errorf("failed to get campaign cap: %w", err)
	}

	err = s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM redemptions WHERE campaign_id = ?", campaignID).Scan(&counts.Count)
	if err != nil {
		return counts, fmt.Errorf("failed to count redemptions: %w", err)
	}

	return counts, nil
}

// GetUserRedemptionCount returns how many times one user has redeemed a
// campaign.
func (s *SQLiteStorage) GetUserRedemptionCount(ctx context.Context, campaignID int64, userID string) (int, error) {
	if userID == "" {
		return 0, common.ErrMissingSubmitter
	}

	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM redemptions WHERE campaign_id = ? AND user_id = ?",
		campaignID, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count user redemptions: %w", err)
	}
	return count, nil
}

// RecordRedemption appends one redemption to the ledger. The engine never
// calls this; it is for the approval flow after a human accepts a
// suggestion.
func (s *SQLiteStorage) RecordRedemption(ctx context.Context, campaignID int64, userID string) error {
	if userID == "" {
		return common.ErrMissingSubmitter
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO redemptions (campaign_id, user_id) VALUES (?, ?)",
		campaignID, userID)
	if err != nil {
		return fmt.Errorf("failed to record redemption: %w", err)
	}
	return nil
}
