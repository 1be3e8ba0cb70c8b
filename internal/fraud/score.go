// Package fraud combines image forensics, merchant template matching and the
// semantic assessment into a single fraud score and decision.
package fraud

import (
	"fmt"
	"math"

	"github.com/wunderfauks/receiptguard/internal/merchant"
	"github.com/wunderfauks/receiptguard/internal/model"
)

// Signal point values. Scoring is purely additive and monotone: every signal
// adds, nothing subtracts.
const (
	pointsAIDetected        = 60
	pointsTooPerfect        = 10
	pointsDuplicateInBatch  = 25
	pointsDuplicateInSystem = 35
	pointsNonEnglish        = 25
	pointsCountryMismatch   = 40
	pointsDateOutOfRange    = 50
	pointsNoTemplateMatch   = 20
	pointsWeakTemplateMatch = 10
	pointsMathInconsistent  = 35
	pointsTaxImplausible    = 20
	pointsFormattingSuspect = 15
	pointsMerchantSuspect   = 10
	pointsPerPattern        = 5
	patternPointsCap        = 25
	likelihoodWeight        = 30
	weakMatchScore          = 30
)

// Score is a pure function of its inputs: no I/O, no hidden state. The total
// is clamped to [0,100]; the decision follows the fixed thresholds; reasons
// are deduplicated preserving first-seen order.
func Score(
	images model.ImageFraudSummary,
	template merchant.MatchResult,
	assessment model.SemanticAssessment,
	receipt model.ReceiptSignals,
) model.FraudResult {
	score := 0
	var reasons []string

	// Image-level summary.
	if images.AnyAIDetected {
		score += pointsAIDetected
		reasons = append(reasons, "AI-generated image detected")
	}
	if images.AnyTooPerfect {
		score += pointsTooPerfect
		reasons = append(reasons, "One or more images unusually clean/perfect")
	}
	if images.DuplicateImages {
		score += pointsDuplicateInBatch
		reasons = append(reasons, "Duplicate images detected in submission")
	}
	if images.DuplicateInSystem {
		score += pointsDuplicateInSystem
		reasons = append(reasons, "Receipt image already submitted before")
	}
	reasons = append(reasons, images.RedFlags...)

	// Receipt-level heuristics.
	if receipt.NonEnglish {
		score += pointsNonEnglish
		reasons = append(reasons, "Receipt is not in the expected language")
	}
	if receipt.CountryMismatch {
		score += pointsCountryMismatch
		reasons = append(reasons, "Receipt is not from the expected country")
	}
	if receipt.DateOutOfRange {
		score += pointsDateOutOfRange
		reasons = append(reasons, "Receipt date is outside allowed time range")
	}
	reasons = append(reasons, receipt.RedFlags...)

	// Merchant template check.
	if !template.Matched {
		score += pointsNoTemplateMatch
		reasons = append(reasons, "Does not match known merchant template")
	} else if template.Score < weakMatchScore {
		score += pointsWeakTemplateMatch
		reasons = append(reasons, "Weak merchant template match")
	}

	// Semantic checks.
	if !assessment.Checks.MathConsistent {
		score += pointsMathInconsistent
		reasons = append(reasons, "Math inconsistency (subtotal + tax != total)")
	}
	if !assessment.Checks.TaxPlausible {
		score += pointsTaxImplausible
		reasons = append(reasons, "Tax rate implausible for country")
	}
	if !assessment.Checks.FormattingPlausible {
		score += pointsFormattingSuspect
		reasons = append(reasons, "Receipt formatting suspicious")
	}
	if !assessment.Checks.MerchantPlausible {
		score += pointsMerchantSuspect
		reasons = append(reasons, "Merchant name/details implausible")
	}

	patternCount := len(assessment.Checks.SuspiciousPatterns)
	patternScore := patternCount * pointsPerPattern
	if patternScore > patternPointsCap {
		patternScore = patternPointsCap
	}
	if patternScore > 0 {
		score += patternScore
		reasons = append(reasons, fmt.Sprintf("%d suspicious patterns detected", patternCount))
	}

	likelihoodScore := int(math.Round(assessment.FraudLikelihood * likelihoodWeight))
	score += likelihoodScore

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}

	return model.FraudResult{
		Score:    score,
		Decision: model.DecisionForScore(score),
		Reasons:  dedupe(reasons),
		Details: map[string]any{
			"image_count":      images.ImageCount,
			"ai_detected":      images.AnyAIDetected,
			"duplicate_images": images.DuplicateImages,
			"template_matched": template.Matched,
			"oracle_score":     likelihoodScore,
		},
	}
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			result = append(result, v)
		}
	}
	return result
}
