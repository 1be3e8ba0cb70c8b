package campaign

import (
	"context"
	"log/slog"

	"github.com/wunderfauks/receiptguard/internal/model"
	"github.com/wunderfauks/receiptguard/internal/service"
)

// slotInfo checks redemption-slot availability for a limited rule. The
// global cap is checked first: when it is reached the slot is unavailable
// regardless of the per-user tally. Every lookup failure fails open — the
// slot is reported available with Remaining nil and Degraded set — because
// availability checks must never block suggestion generation.
func slotInfo(ctx context.Context, ledger service.RedemptionLedger, campaignID int64, userID string, limit model.RuleLimit) model.SlotInfo {
	counts, err := ledger.GetRedemptionCount(ctx, campaignID)
	if err != nil {
		slog.Warn("redemption count lookup failed, failing open",
			"campaign_id", campaignID,
			"error", err)
		return model.SlotInfo{Available: true, Degraded: true}
	}

	maxSlots := counts.Max
	if maxSlots == 0 {
		maxSlots = limit.Max
	}

	var remaining *int
	if maxSlots > 0 {
		left := maxSlots - counts.Count
		if left < 0 {
			left = 0
		}
		remaining = &left
	}

	if maxSlots > 0 && counts.Count >= maxSlots {
		zero := 0
		return model.SlotInfo{Available: false, Remaining: &zero}
	}

	perUser := 1
	if limit.PerUser != nil {
		perUser = *limit.PerUser
	}
	if perUser > 0 {
		userCount, err := ledger.GetUserRedemptionCount(ctx, campaignID, userID)
		if err != nil {
			slog.Warn("user redemption count lookup failed, failing open",
				"campaign_id", campaignID,
				"user_id", userID,
				"error", err)
			return model.SlotInfo{Available: true, Remaining: remaining, Degraded: true}
		}
		if userCount >= perUser {
			return model.SlotInfo{Available: false, Remaining: remaining}
		}
	}

	return model.SlotInfo{Available: true, Remaining: remaining}
}
