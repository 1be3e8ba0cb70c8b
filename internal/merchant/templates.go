// Package merchant matches OCR text against known merchant receipt
// fingerprints. The catalog is static reference data loaded at process start.
package merchant

import "regexp"

// Template is one catalog entry describing what a genuine receipt from a
// merchant looks like: identifying keywords, layout patterns that must be
// present, and receipt-id formats.
type Template struct {
	ID                string
	DisplayName       string
	Country           string
	Currency          string
	Keywords          []string
	RequiredPatterns  []*regexp.Regexp
	ReceiptIDPatterns []*regexp.Regexp
	TaxRate           float64
}

// Catalog returns the built-in merchant templates in evaluation order.
// Catalog order is the tie-break when candidates score equally.
func Catalog() []Template {
	return builtinTemplates
}

var builtinTemplates = []Template{
	{
		ID:          "7eleven_th",
		DisplayName: "7-Eleven (Thailand)",
		Keywords:    []string{"7-eleven", "เซเว่น", "cp all"},
		Country:     "TH",
		Currency:    "THB",
		RequiredPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)total`),
			regexp.MustCompile(`(?i)vat|tax`),
			regexp.MustCompile(`(?i)฿|\bthb\b`),
			regexp.MustCompile(`\b\d{2}/\d{2}/\d{4}\b|\b\d{4}-\d{2}-\d{2}\b`),
		},
		ReceiptIDPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(receipt|bill|inv)\s*(no\.?|#|id)?\s*[:\-]?\s*[A-Z0-9\-]{6,}\b`),
		},
		TaxRate: 0.07,
	},
	{
		ID:          "starbucks_generic",
		DisplayName: "Starbucks",
		Keywords:    []string{"starbucks"},
		RequiredPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)total`),
			regexp.MustCompile(`\b\d{2}:\d{2}\b`),
			regexp.MustCompile(`(?i)store|receipt`),
		},
		ReceiptIDPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(order|receipt)\s*(no\.?|#)?\s*[:\-]?\s*\d{4,}\b`),
		},
	},
	{
		ID:          "lotus_th",
		DisplayName: "Lotus's (Thailand)",
		Keywords:    []string{"lotus", "tesco lotus", "โลตัส"},
		Country:     "TH",
		Currency:    "THB",
		RequiredPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)total`),
			regexp.MustCompile(`(?i)vat`),
			regexp.MustCompile(`(?i)฿|\bthb\b`),
		},
		ReceiptIDPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(receipt|txn)\s*(no\.?|#)?\s*[:\-]?\s*[A-Z0-9]{6,}\b`),
		},
		TaxRate: 0.07,
	},
	{
		ID:          "kfc_th",
		DisplayName: "KFC (Thailand)",
		Keywords:    []string{"kfc", "kentucky fried chicken"},
		Country:     "TH",
		Currency:    "THB",
		RequiredPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)total`),
			regexp.MustCompile(`(?i)vat`),
			regexp.MustCompile(`(?i)฿|\bthb\b`),
		},
		ReceiptIDPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(order|receipt|bill)\s*(no\.?|#)?\s*[:\-]?\s*\d{5,}\b`),
		},
		TaxRate: 0.07,
	},
	{
		ID:          "bigc_th",
		DisplayName: "Big C (Thailand)",
		Keywords:    []string{"big c", "bigc", "บิ๊กซี"},
		Country:     "TH",
		Currency:    "THB",
		RequiredPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)total`),
			regexp.MustCompile(`(?i)vat`),
			regexp.MustCompile(`(?i)฿|\bthb\b`),
		},
		ReceiptIDPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(receipt|txn|transaction)\s*(no\.?|#)?\s*[:\-]?\s*[A-Z0-9]{6,}\b`),
		},
		TaxRate: 0.07,
	},
	{
		ID:          "naturel_sg",
		DisplayName: "Naturel (Singapore)",
		Keywords:    []string{"naturel"},
		Country:     "SG",
		Currency:    "SGD",
		RequiredPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)total`),
			regexp.MustCompile(`(?i)\$|\bsgd\b`),
			regexp.MustCompile(`\b\d{2}/\d{2}/\d{4}\b|\b\d{4}-\d{2}-\d{2}\b`),
		},
		ReceiptIDPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(receipt|invoice|order)\s*(no\.?|#)?\s*[:\-]?\s*[A-Z0-9]{5,}\b`),
		},
		// Singapore GST, current rate.
		TaxRate: 0.09,
	},
}
