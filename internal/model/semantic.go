package model

// MerchantAssessment is the oracle's view of which merchant issued a receipt.
type MerchantAssessment struct {
	Name            string  `json:"name"`
	MatchedTemplate string  `json:"matched_template"`
	Confidence      float64 `json:"confidence"`
}

// ExtractedFields are the receipt fields the oracle extracted from OCR text.
// Pointers distinguish "absent" from zero.
type ExtractedFields struct {
	Currency  string   `json:"currency"`
	Date      string   `json:"date"`
	Time      string   `json:"time"`
	ReceiptID string   `json:"receipt_id"`
	Subtotal  *float64 `json:"subtotal"`
	Tax       *float64 `json:"tax"`
	Total     *float64 `json:"total"`
}

// ConsistencyChecks are the oracle's boolean plausibility verdicts.
type ConsistencyChecks struct {
	SuspiciousPatterns  []string `json:"suspicious_patterns"`
	MathConsistent      bool     `json:"math_consistent"`
	TaxPlausible        bool     `json:"tax_plausible"`
	FormattingPlausible bool     `json:"formatting_plausible"`
	MerchantPlausible   bool     `json:"merchant_plausible"`
}

// SemanticAssessment is the externally produced consistency/plausibility
// verdict for a receipt. It is treated as an opaque oracle result; when the
// oracle fails or returns a malformed response the adapter substitutes
// FallbackAssessment so the aggregator always sees a well-formed input.
type SemanticAssessment struct {
	Merchant        MerchantAssessment `json:"merchant"`
	Extracted       ExtractedFields    `json:"extracted"`
	Checks          ConsistencyChecks  `json:"checks"`
	Explanation     string             `json:"explanation"`
	FraudLikelihood float64            `json:"fraud_likelihood"`
}

// FallbackAssessment is the conservative default substituted when semantic
// validation is unavailable: fraud likelihood 0.5 and every check failed.
func FallbackAssessment(reason string) SemanticAssessment {
	if reason == "" {
		reason = "validation unavailable"
	}
	return SemanticAssessment{
		Checks: ConsistencyChecks{
			SuspiciousPatterns: []string{reason},
		},
		FraudLikelihood: 0.5,
		Explanation:     reason,
	}
}
