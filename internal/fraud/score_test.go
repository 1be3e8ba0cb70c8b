package fraud

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wunderfauks/receiptguard/internal/merchant"
	"github.com/wunderfauks/receiptguard/internal/model"
)

// cleanAssessment passes every semantic check so only the signals under test
// contribute points.
func cleanAssessment() model.SemanticAssessment {
	return model.SemanticAssessment{
		Checks: model.ConsistencyChecks{
			MathConsistent:      true,
			TaxPlausible:        true,
			FormattingPlausible: true,
			MerchantPlausible:   true,
			SuspiciousPatterns:  []string{},
		},
	}
}

func matchedTemplate(score int) merchant.MatchResult {
	return merchant.MatchResult{Matched: true, Score: score}
}

func TestScoreSignalWeights(t *testing.T) {
	tests := []struct {
		name      string
		images    model.ImageFraudSummary
		template  merchant.MatchResult
		receipt   model.ReceiptSignals
		mutate    func(*model.SemanticAssessment)
		wantScore int
	}{
		{
			name:      "clean submission scores zero",
			template:  matchedTemplate(40),
			wantScore: 0,
		},
		{
			name:      "AI detected",
			images:    model.ImageFraudSummary{AnyAIDetected: true},
			template:  matchedTemplate(40),
			wantScore: 60,
		},
		{
			name:      "too perfect",
			images:    model.ImageFraudSummary{AnyTooPerfect: true},
			template:  matchedTemplate(40),
			wantScore: 10,
		},
		{
			name:      "duplicate in batch",
			images:    model.ImageFraudSummary{DuplicateImages: true},
			template:  matchedTemplate(40),
			wantScore: 25,
		},
		{
			name:      "duplicate in system",
			images:    model.ImageFraudSummary{DuplicateInSystem: true},
			template:  matchedTemplate(40),
			wantScore: 35,
		},
		{
			name:      "non-english text",
			template:  matchedTemplate(40),
			receipt:   model.ReceiptSignals{NonEnglish: true},
			wantScore: 25,
		},
		{
			name:      "country mismatch",
			template:  matchedTemplate(40),
			receipt:   model.ReceiptSignals{CountryMismatch: true},
			wantScore: 40,
		},
		{
			name:      "date out of range",
			template:  matchedTemplate(40),
			receipt:   model.ReceiptSignals{DateOutOfRange: true},
			wantScore: 50,
		},
		{
			name:      "no template match",
			template:  merchant.MatchResult{Matched: false},
			wantScore: 20,
		},
		{
			name:      "weak template match",
			template:  matchedTemplate(20),
			wantScore: 10,
		},
		{
			name:     "math inconsistent",
			template: matchedTemplate(40),
			mutate: func(a *model.SemanticAssessment) {
				a.Checks.MathConsistent = false
			},
			wantScore: 35,
		},
		{
			name:     "tax implausible",
			template: matchedTemplate(40),
			mutate: func(a *model.SemanticAssessment) {
				a.Checks.TaxPlausible = false
			},
			wantScore: 20,
		},
		{
			name:     "formatting implausible",
			template: matchedTemplate(40),
			mutate: func(a *model.SemanticAssessment) {
				a.Checks.FormattingPlausible = false
			},
			wantScore: 15,
		},
		{
			name:     "merchant implausible",
			template: matchedTemplate(40),
			mutate: func(a *model.SemanticAssessment) {
				a.Checks.MerchantPlausible = false
			},
			wantScore: 10,
		},
		{
			name:     "suspicious patterns scored per pattern",
			template: matchedTemplate(40),
			mutate: func(a *model.SemanticAssessment) {
				a.Checks.SuspiciousPatterns = []string{"a", "b", "c"}
			},
			wantScore: 15,
		},
		{
			name:     "suspicious patterns capped at 25",
			template: matchedTemplate(40),
			mutate: func(a *model.SemanticAssessment) {
				a.Checks.SuspiciousPatterns = []string{"a", "b", "c", "d", "e", "f", "g"}
			},
			wantScore: 25,
		},
		{
			name:     "fraud likelihood weighted and rounded",
			template: matchedTemplate(40),
			mutate: func(a *model.SemanticAssessment) {
				a.FraudLikelihood = 0.5
			},
			wantScore: 15,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assessment := cleanAssessment()
			if tt.mutate != nil {
				tt.mutate(&assessment)
			}

			result := Score(tt.images, tt.template, assessment, tt.receipt)
			assert.Equal(t, tt.wantScore, result.Score)
		})
	}
}

func TestScoreClampAndDecisions(t *testing.T) {
	// Everything wrong at once: the raw sum is far above 100.
	images := model.ImageFraudSummary{
		AnyAIDetected:     true,
		AnyTooPerfect:     true,
		DuplicateImages:   true,
		DuplicateInSystem: true,
	}
	receipt := model.ReceiptSignals{
		NonEnglish:      true,
		CountryMismatch: true,
		DateOutOfRange:  true,
	}
	assessment := model.SemanticAssessment{FraudLikelihood: 1.0}

	result := Score(images, merchant.MatchResult{}, assessment, receipt)
	assert.Equal(t, 100, result.Score)
	assert.Equal(t, model.DecisionReject, result.Decision)

	tests := []struct {
		want  model.Decision
		score int
	}{
		{model.DecisionAccept, 0},
		{model.DecisionAccept, 39},
		{model.DecisionReview, 40},
		{model.DecisionReview, 69},
		{model.DecisionReject, 70},
		{model.DecisionReject, 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, model.DecisionForScore(tt.score), "score %d", tt.score)
	}
}

func TestScoreMonotonicity(t *testing.T) {
	base := Score(model.ImageFraudSummary{}, matchedTemplate(40), cleanAssessment(), model.ReceiptSignals{})

	additions := []struct {
		name    string
		images  model.ImageFraudSummary
		receipt model.ReceiptSignals
	}{
		{name: "ai", images: model.ImageFraudSummary{AnyAIDetected: true}},
		{name: "dup batch", images: model.ImageFraudSummary{DuplicateImages: true}},
		{name: "non-english", receipt: model.ReceiptSignals{NonEnglish: true}},
		{name: "stale date", receipt: model.ReceiptSignals{DateOutOfRange: true}},
	}

	for _, add := range additions {
		t.Run(add.name, func(t *testing.T) {
			result := Score(add.images, matchedTemplate(40), cleanAssessment(), add.receipt)
			assert.GreaterOrEqual(t, result.Score, base.Score)
		})
	}
}

func TestScoreDeduplicatesReasons(t *testing.T) {
	images := model.ImageFraudSummary{
		AnyAIDetected: true,
		RedFlags:      []string{"AI-generated image detected", "No EXIF metadata (messaging app may have stripped it)"},
	}

	result := Score(images, matchedTemplate(40), cleanAssessment(), model.ReceiptSignals{})

	seen := make(map[string]int)
	for _, reason := range result.Reasons {
		seen[reason]++
	}
	for reason, count := range seen {
		require.Equal(t, 1, count, "reason %q duplicated", reason)
	}
	assert.Contains(t, result.Reasons, "AI-generated image detected")
}

func TestScoreDeterminism(t *testing.T) {
	images := model.ImageFraudSummary{AnyTooPerfect: true, ImageCount: 2}
	assessment := cleanAssessment()
	assessment.FraudLikelihood = 0.33

	first := Score(images, matchedTemplate(25), assessment, model.ReceiptSignals{NonEnglish: true})
	second := Score(images, matchedTemplate(25), assessment, model.ReceiptSignals{NonEnglish: true})

	assert.Equal(t, first, second)
}
