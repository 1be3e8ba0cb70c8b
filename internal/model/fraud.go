package model

// Decision is the outcome of fraud scoring for a submission.
type Decision string

// Fraud decisions, keyed off the clamped score.
const (
	DecisionAccept Decision = "ACCEPT"
	DecisionReview Decision = "REVIEW"
	DecisionReject Decision = "REJECT"
)

// Score thresholds for decisions.
const (
	RejectThreshold = 70
	ReviewThreshold = 40
)

// DecisionForScore maps a clamped fraud score to a decision.
func DecisionForScore(score int) Decision {
	switch {
	case score >= RejectThreshold:
		return DecisionReject
	case score >= ReviewThreshold:
		return DecisionReview
	default:
		return DecisionAccept
	}
}

// ReceiptSignals are receipt-level heuristic flags computed from the merged
// OCR text and parsed fields, independent of any single image.
type ReceiptSignals struct {
	RedFlags        []string `json:"red_flags"`
	NonEnglish      bool     `json:"non_english"`
	CountryMismatch bool     `json:"country_mismatch"`
	DateOutOfRange  bool     `json:"date_out_of_range"`
}

// FraudResult is the aggregated output of the fraud scoring pipeline for one
// submission. Score is clamped to [0,100] and reasons are deduplicated.
type FraudResult struct {
	Details  map[string]any `json:"details"`
	Decision Decision       `json:"decision"`
	Reasons  []string       `json:"reasons"`
	Score    int            `json:"score"`
}
