// Package service defines the collaborator contracts the engine consumes.
// Implementations (WordPress, Twilio, Vision) live outside the core; the
// bundled sqlite store provides a local reference implementation.
package service

import (
	"context"
	"time"

	"github.com/wunderfauks/receiptguard/internal/model"
)

// CampaignSource provides the active campaign catalog.
type CampaignSource interface {
	FetchActiveCampaigns(ctx context.Context) ([]model.Campaign, error)
}

// RedemptionCount is the global redemption state of a campaign.
type RedemptionCount struct {
	Max   int
	Count int
}

// RedemptionLedger exposes redemption tallies for slot accounting. Lookup
// failures are expected; callers fail open on error.
type RedemptionLedger interface {
	GetRedemptionCount(ctx context.Context, campaignID int64) (RedemptionCount, error)
	GetUserRedemptionCount(ctx context.Context, campaignID int64, userID string) (int, error)
}

// DuplicateIndex answers whether a content hash has been seen in a previous
// submission. Errors fail open (treated as "not a duplicate").
type DuplicateIndex interface {
	CheckDuplicateHash(ctx context.Context, hash string) (bool, error)
	RecordHash(ctx context.Context, hash, submissionID string) error
}

// ResultSink persists pipeline outputs for external review.
type ResultSink interface {
	PersistFraudResult(ctx context.Context, receiptID string, result model.FraudResult) error
	PersistCampaignSuggestion(ctx context.Context, receiptID string, payload model.SuggestionPayload) error
}

// ReceiptParser turns merged OCR text into structured receipt fields. The
// parser itself (LLM-backed in production) is an external capability.
type ReceiptParser interface {
	Parse(ctx context.Context, ocrText string) (model.ParsedReceipt, error)
}

// OCRClient extracts text from a receipt image. The engine treats OCR as an
// external capability and only consumes its merged text output.
type OCRClient interface {
	ExtractText(ctx context.Context, image []byte) (string, error)
}

// RetryOptions configures retry behavior for external calls.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
