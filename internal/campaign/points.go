package campaign

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/wunderfauks/receiptguard/internal/model"
)

// calculatePoints sums the points of every award_points action on a matched
// rule. Unknown modes contribute zero with a logged warning. The result is
// floored at 0.
func calculatePoints(actions []model.AwardAction, ctx model.ReceiptContext) int {
	total := 0

	for _, action := range actions {
		if action.Action != model.ActionAwardPoints {
			continue
		}

		rate := floatOrDefault(action.Rate, 1)
		multiplier := floatOrDefault(action.Multiplier, 1)
		spend := decimal.NewFromFloat(ctx.Total)

		switch model.ParsePointsMode(action.Mode) {
		case model.ModePerDollar:
			earned := spend.
				Mul(decimal.NewFromFloat(rate)).
				Mul(decimal.NewFromFloat(multiplier))
			total += applyRound(earned, model.RoundMode(action.Round))

		case model.ModeFlat:
			if action.Bonus != 0 {
				total += action.Bonus
			} else {
				total += applyRound(decimal.NewFromFloat(rate), model.RoundHalf)
			}

		case model.ModeFlatPerMatch:
			total += action.Bonus * matchCount(action.MatchKeywords, ctx.Items)

		case model.ModeTiered:
			total += tieredPoints(action.Tiers, ctx.Total)

		default:
			slog.Warn("unknown points mode, awarding nothing", "mode", action.Mode)
		}
	}

	if total < 0 {
		return 0
	}
	return total
}

// matchCount counts the line items whose name contains any configured
// keyword. With no keywords configured at all the count defaults to 1.
func matchCount(keywords []string, items []model.ReceiptItem) int {
	if len(keywords) == 0 {
		return 1
	}

	count := 0
	for _, item := range items {
		name := strings.ToLower(item.Name)
		for _, keyword := range keywords {
			if strings.Contains(name, strings.ToLower(keyword)) {
				count++
				break
			}
		}
	}
	if count == 0 {
		return 1
	}
	return count
}

// tieredPoints awards the highest tier whose threshold the spend satisfies.
// No qualifying tier means zero points.
func tieredPoints(tiers []model.Tier, spend float64) int {
	sorted := make([]model.Tier, len(tiers))
	copy(sorted, tiers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MinSpend > sorted[j].MinSpend
	})

	for _, tier := range sorted {
		if spend >= tier.MinSpend {
			return tier.Points
		}
	}
	return 0
}

func applyRound(value decimal.Decimal, mode model.RoundMode) int {
	switch mode {
	case model.RoundCeil:
		return int(value.Ceil().IntPart())
	case model.RoundHalf:
		return int(value.Round(0).IntPart())
	default:
		return int(value.Floor().IntPart())
	}
}

func floatOrDefault(value *float64, fallback float64) float64 {
	if value == nil {
		return fallback
	}
	return *value
}
