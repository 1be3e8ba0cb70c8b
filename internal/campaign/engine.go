package campaign

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/wunderfauks/receiptguard/internal/common"
	"github.com/wunderfauks/receiptguard/internal/model"
	"github.com/wunderfauks/receiptguard/internal/service"
)

// Engine evaluates the active campaign catalog against one receipt. It is
// stateless; campaigns and redemption tallies are read through the injected
// collaborators on each evaluation.
type Engine struct {
	source service.CampaignSource
	ledger service.RedemptionLedger
	now    func() time.Time
}

// NewEngine creates a campaign evaluation engine.
func NewEngine(source service.CampaignSource, ledger service.RedemptionLedger) *Engine {
	return &Engine{
		source: source,
		ledger: ledger,
		now:    time.Now,
	}
}

// WithClock overrides the evaluation timestamp source, for tests.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// EvaluateCampaigns runs every active campaign's rules against the receipt
// and returns the full suggestion payload. Every campaign produces at least
// one suggestion, matched or not, so reviewers see what was considered.
// A missing submitter ID is fatal: suggestions cannot be attributed.
func (e *Engine) EvaluateCampaigns(ctx context.Context, rctx model.ReceiptContext, submitterID string) (model.SuggestionPayload, error) {
	if submitterID == "" {
		return model.SuggestionPayload{}, common.ErrMissingSubmitter
	}

	campaigns, err := e.source.FetchActiveCampaigns(ctx)
	if err != nil {
		return model.SuggestionPayload{}, fmt.Errorf("fetching active campaigns: %w", err)
	}

	snapshot := rctx.Snapshot()
	payload := model.SuggestionPayload{
		EvaluatedAt: e.now().UTC(),
		Suggestions: make([]model.RuleSuggestion, 0, len(campaigns)),
	}

	for _, campaign := range campaigns {
		if len(campaign.Rules) == 0 {
			payload.Suggestions = append(payload.Suggestions, model.RuleSuggestion{
				CampaignPostID:  campaign.CampaignPostID,
				CampaignTitle:   campaign.Title,
				BrandID:         campaign.BrandID,
				RuleLabel:       "No rules defined",
				Note:            "Campaign has no rules configured",
				SlotAvailable:   true,
				ReceiptSnapshot: snapshot,
			})
			continue
		}

		rules := make([]model.CampaignRule, len(campaign.Rules))
		copy(rules, campaign.Rules)
		sort.SliceStable(rules, func(i, j int) bool {
			return rules[i].Priority > rules[j].Priority
		})

		for _, rule := range rules {
			payload.Suggestions = append(payload.Suggestions,
				e.evaluateRule(ctx, campaign, rule, rctx, submitterID, snapshot))
		}
	}

	for _, s := range payload.Suggestions {
		if s.Matched && s.SlotAvailable {
			payload.Matched = true
			payload.TotalSuggestedPoints += s.SuggestedPoints
		}
	}

	slog.Info("campaign evaluation complete",
		"campaigns", len(campaigns),
		"suggestions", len(payload.Suggestions),
		"matched", payload.Matched,
		"total_suggested_points", payload.TotalSuggestedPoints)

	return payload, nil
}

func (e *Engine) evaluateRule(ctx context.Context, campaign model.Campaign, rule model.CampaignRule, rctx model.ReceiptContext, submitterID string, snapshot model.ReceiptSnapshot) model.RuleSuggestion {
	suggestion := model.RuleSuggestion{
		CampaignPostID:  campaign.CampaignPostID,
		CampaignTitle:   campaign.Title,
		BrandID:         campaign.BrandID,
		RuleID:          rule.ID,
		RuleLabel:       rule.Label,
		SlotAvailable:   true,
		ReceiptSnapshot: snapshot,
	}

	// Slot accounting is reported for every limited rule, matched or not,
	// so a reviewer sees exhausted campaigns at a glance.
	if rule.Limit != nil {
		slot := slotInfo(ctx, e.ledger, campaign.CampaignPostID, submitterID, *rule.Limit)
		suggestion.SlotAvailable = slot.Available
		suggestion.SlotsRemaining = slot.Remaining
		switch {
		case slot.Degraded:
			suggestion.Note = "Slot check unavailable, assumed open"
		case !slot.Available:
			suggestion.Note = "Redemption limit reached"
		}
	}

	if len(rule.Then) == 0 {
		suggestion.Note = "No award actions defined"
		return suggestion
	}

	if !evaluateWhen(rule.When, rctx) {
		suggestion.Note = "Conditions not met"
		return suggestion
	}

	suggestion.Matched = true
	suggestion.SuggestedPoints = calculatePoints(rule.Then, rctx)

	return suggestion
}
