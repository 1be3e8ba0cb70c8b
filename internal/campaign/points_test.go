package campaign

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wunderfauks/receiptguard/internal/model"
)

func floatPtr(v float64) *float64 { return &v }

func award(mode string, mutate func(*model.AwardAction)) []model.AwardAction {
	action := model.AwardAction{Action: model.ActionAwardPoints, Mode: mode}
	if mutate != nil {
		mutate(&action)
	}
	return []model.AwardAction{action}
}

func TestCalculatePointsPerDollar(t *testing.T) {
	ctx := model.NewReceiptContext(model.ParsedReceipt{
		StoreName:   "store",
		TotalAmount: 50.00,
		Currency:    "SGD",
	})

	tests := []struct {
		mutate func(*model.AwardAction)
		name   string
		want   int
	}{
		{name: "rate and multiplier", mutate: func(a *model.AwardAction) {
			a.Rate = floatPtr(1)
			a.Multiplier = floatPtr(2)
		}, want: 100},
		{name: "defaults to rate 1 multiplier 1", want: 50},
		{name: "floor is the default rounding", mutate: func(a *model.AwardAction) {
			a.Rate = floatPtr(0.035)
		}, want: 1},
		{name: "ceil rounding", mutate: func(a *model.AwardAction) {
			a.Rate = floatPtr(0.035)
			a.Round = "ceil"
		}, want: 2},
		{name: "half rounding", mutate: func(a *model.AwardAction) {
			a.Rate = floatPtr(0.035)
			a.Round = "round"
		}, want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, calculatePoints(award("per_dollar", tt.mutate), ctx))
		})
	}
}

func TestCalculatePointsFlat(t *testing.T) {
	ctx := model.ReceiptContext{Total: 20}

	assert.Equal(t, 15, calculatePoints(award("flat", func(a *model.AwardAction) {
		a.Bonus = 15
	}), ctx))

	// Falls back to round(rate) without a bonus.
	assert.Equal(t, 3, calculatePoints(award("flat", func(a *model.AwardAction) {
		a.Rate = floatPtr(2.6)
	}), ctx))
}

func TestCalculatePointsFlatPerMatch(t *testing.T) {
	ctx := model.ReceiptContext{
		Total: 30,
		Items: []model.ReceiptItem{
			{Name: "Naturel Olive Oil"},
			{Name: "Naturel Canola Oil"},
			{Name: "Free Range Eggs"},
		},
	}

	matching := award("flat_per_match", func(a *model.AwardAction) {
		a.Bonus = 10
		a.MatchKeywords = []string{"naturel"}
	})
	assert.Equal(t, 20, calculatePoints(matching, ctx))

	// No keywords configured counts as one match.
	noKeywords := award("flat_per_match", func(a *model.AwardAction) {
		a.Bonus = 10
	})
	assert.Equal(t, 10, calculatePoints(noKeywords, ctx))

	// Keywords with zero hits still award one bonus.
	noHits := award("flat_per_match", func(a *model.AwardAction) {
		a.Bonus = 10
		a.MatchKeywords = []string{"durian"}
	})
	assert.Equal(t, 10, calculatePoints(noHits, ctx))
}

func TestCalculatePointsTiered(t *testing.T) {
	tiers := []model.Tier{
		{MinSpend: 100, Points: 50},
		{MinSpend: 50, Points: 20},
	}
	actions := award("tiered", func(a *model.AwardAction) { a.Tiers = tiers })

	tests := []struct {
		name  string
		total float64
		want  int
	}{
		{name: "middle tier", total: 75, want: 20},
		{name: "top tier", total: 150, want: 50},
		{name: "exact threshold", total: 50, want: 20},
		{name: "below every tier", total: 30, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, calculatePoints(actions, model.ReceiptContext{Total: tt.total}))
		})
	}
}

func TestCalculatePointsEdgeCases(t *testing.T) {
	ctx := model.ReceiptContext{Total: 50}

	// Unknown mode contributes zero.
	assert.Equal(t, 0, calculatePoints(award("per_visit", nil), ctx))

	// Non-award actions are skipped.
	actions := []model.AwardAction{
		{Action: "send_email", Bonus: 99},
		{Action: model.ActionAwardPoints, Mode: "flat", Bonus: 5},
	}
	assert.Equal(t, 5, calculatePoints(actions, ctx))

	// Multiple award actions sum.
	combo := []model.AwardAction{
		{Action: model.ActionAwardPoints, Mode: "per_dollar", Rate: floatPtr(1)},
		{Action: model.ActionAwardPoints, Mode: "flat", Bonus: 10},
	}
	assert.Equal(t, 60, calculatePoints(combo, ctx))

	// Empty mode defaults to per_dollar.
	assert.Equal(t, 50, calculatePoints(award("", nil), ctx))

	// Negative totals never go below zero.
	assert.Equal(t, 0, calculatePoints(award("per_dollar", nil), model.ReceiptContext{Total: -10}))
}
