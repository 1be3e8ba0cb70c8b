package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/wunderfauks/receiptguard/internal/common"
	"github.com/wunderfauks/receiptguard/internal/model"
)

// PersistFraudResult stores the scored verdict for a submission. The full
// result is kept as a JSON payload alongside the indexed score and decision.
func (s *SQLiteStorage) PersistFraudResult(ctx context.Context, receiptID string, result model.FraudResult) error {
	if receiptID == "" {
		return common.ErrMissingReceiptID
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode fraud result: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO fraud_results (receipt_id, score, decision, payload)
		 VALUES (?, ?, ?, ?)`,
		receiptID, result.Score, string(result.Decision), string(payload))
	if err != nil {
		return fmt.Errorf("failed to persist fraud result: %w", err)
	}
	return nil
}

// PersistCampaignSuggestion stores a suggestion payload in the review queue.
// Queued suggestions are immutable: a second write for the same receipt is
// rejected as a duplicate so a pending review is never silently replaced.
func (s *SQLiteStorage) PersistCampaignSuggestion(ctx context.Context, receiptID string, payload model.SuggestionPayload) error {
	if receiptID == "" {
		return common.ErrMissingReceiptID
	}

	doc, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode suggestion payload: %w", err)
	}

	matched := 0
	if payload.Matched {
		matched = 1
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO campaign_suggestions (receipt_id, payload, total_points, matched)
		 VALUES (?, ?, ?, ?)`,
		receiptID, string(doc), payload.TotalSuggestedPoints, matched)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return fmt.Errorf("%w: suggestion already queued for receipt %s", common.ErrDuplicateEntry, receiptID)
		}
		return fmt.Errorf("failed to persist campaign suggestion: %w", err)
	}
	return nil
}

// GetFraudResult loads a stored fraud result by receipt id.
func (s *SQLiteStorage) GetFraudResult(ctx context.Context, receiptID string) (model.FraudResult, error) {
	var (
		result model.FraudResult
		doc    string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT payload FROM fraud_results WHERE receipt_id = ?", receiptID).Scan(&doc)
	if err != nil {
		return result, fmt.Errorf("failed to load fraud result: %w", err)
	}
	if err := json.Unmarshal([]byte(doc), &result); err != nil {
		return result, fmt.Errorf("failed to decode fraud result: %w", err)
	}
	return result, nil
}
