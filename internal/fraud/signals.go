package fraud

import (
	"strings"
	"time"
	"unicode"

	"github.com/wunderfauks/receiptguard/internal/model"
)

// Receipt-level heuristic thresholds.
const (
	// Minimum share of letters that must be ASCII for the text to count as
	// the expected language.
	asciiLetterRatioThreshold = 0.7

	// Receipts older than this (or dated in the future) are out of range.
	recencyWindow = 14 * 24 * time.Hour
)

// Currencies expected per supported country hint.
var expectedCurrency = map[string]string{
	"SG": "SGD",
	"TH": "THB",
}

// ComputeReceiptSignals derives receipt-level heuristic flags from the merged
// OCR text and the oracle's extracted fields. Unparseable inputs degrade to
// "signal absent": only positively detected anomalies raise flags.
func ComputeReceiptSignals(ocrText, countryHint string, extracted model.ExtractedFields, now time.Time) model.ReceiptSignals {
	signals := model.ReceiptSignals{RedFlags: []string{}}

	signals.NonEnglish = mostlyNonASCIILetters(ocrText)
	signals.CountryMismatch = countryMismatch(countryHint, extracted.Currency)
	signals.DateOutOfRange = dateOutOfRange(extracted.Date, now)

	return signals
}

// mostlyNonASCIILetters reports whether fewer than 70% of the letters in the
// text are ASCII. Text with no letters at all is not flagged.
func mostlyNonASCIILetters(text string) bool {
	var letters, ascii int
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if r < 128 {
			ascii++
		}
	}
	if letters == 0 {
		return false
	}
	return float64(ascii)/float64(letters) < asciiLetterRatioThreshold
}

// countryMismatch reports whether the extracted currency contradicts the
// expected currency for the country hint. Unknown hints or absent currency
// never flag.
func countryMismatch(countryHint, currency string) bool {
	expected, ok := expectedCurrency[strings.ToUpper(countryHint)]
	if !ok || currency == "" {
		return false
	}
	return !strings.EqualFold(currency, expected)
}

// dateOutOfRange reports whether the purchase date falls outside the allowed
// recency window. Absent or unparseable dates are treated as signal absent.
func dateOutOfRange(date string, now time.Time) bool {
	if date == "" {
		return false
	}
	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		return false
	}
	if parsed.After(now.AddDate(0, 0, 1)) {
		return true
	}
	return now.Sub(parsed) > recencyWindow
}
