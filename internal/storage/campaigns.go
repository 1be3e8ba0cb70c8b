package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/wunderfauks/receiptguard/internal/model"
)

// FetchActiveCampaigns loads every active campaign with its rule list. Rules
// are stored as a JSON document per campaign; a campaign whose rules fail to
// decode is returned with no rules rather than dropped, so the evaluator
// still surfaces it to reviewers.
func (s *SQLiteStorage) FetchActiveCampaigns(ctx context.Context) ([]model.Campaign, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, title, brand_id, rules FROM campaigns WHERE active = 1 ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query campaigns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var campaigns []model.Campaign
	for rows.Next() {
		var (
			campaign model.Campaign
			brandID  *string
			rulesDoc string
		)
		if err := rows.Scan(&campaign.CampaignPostID, &campaign.Title, &brandID, &rulesDoc); err != nil {
			return nil, fmt.Errorf("failed to scan campaign: %w", err)
		}
		if brandID != nil {
			campaign.BrandID = *brandID
		}
		if err := json.Unmarshal([]byte(rulesDoc), &campaign.Rules); err != nil {
			campaign.Rules = nil
		}
		campaigns = append(campaigns, campaign)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate campaigns: %w", err)
	}

	return campaigns, nil
}

// SaveCampaign inserts or replaces a campaign. Used by the CLI to seed a
// local catalog.
func (s *SQLiteStorage) SaveCampaign(ctx context.Context, campaign model.Campaign, maxRedemptions int) (int64, error) {
	rulesDoc, err := json.Marshal(campaign.Rules)
	if err != nil {
		return 0, fmt.Errorf("failed to encode campaign rules: %w", err)
	}

	if campaign.CampaignPostID != 0 {
		_, err = s.db.ExecContext(ctx,
			`INSERT OR REPLACE INTO campaigns (id, title, brand_id, rules, max_redemptions, active)
			 VALUES (?, ?, ?, ?, ?, 1)`,
			campaign.CampaignPostID, campaign.Title, campaign.BrandID, string(rulesDoc), maxRedemptions)
		if err != nil {
			return 0, fmt.Errorf("failed to save campaign: %w", err)
		}
		return campaign.CampaignPostID, nil
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO campaigns (title, brand_id, rules, max_redemptions, active)
		 VALUES (?, ?, ?, ?, 1)`,
		campaign.Title, campaign.BrandID, string(rulesDoc), maxRedemptions)
	if err != nil {
		return 0, fmt.Errorf("failed to save campaign: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get campaign id: %w", err)
	}
	return id, nil
}
