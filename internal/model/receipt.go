// Package model defines the core data structures for the receiptguard engine.
package model

import "strings"

// ReceiptItem is a single line item on a parsed receipt.
type ReceiptItem struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity float64 `json:"quantity"`
}

// ParsedReceipt is the raw output of the external receipt parser before
// normalization.
type ParsedReceipt struct {
	ReceiptID    string        `json:"receipt_id"`
	StoreName    string        `json:"store_name"`
	PurchaseDate string        `json:"purchase_date"`
	TotalAmount  float64       `json:"total_amount"`
	Currency     string        `json:"currency"`
	Items        []ReceiptItem `json:"items"`
}

// ReceiptContext is the normalized, immutable view of a parsed receipt that
// both the campaign rule evaluator and the fraud scorer consume. Store name is
// lowercased and currency uppercased during construction; build it once per
// submission with NewReceiptContext.
type ReceiptContext struct {
	StoreName    string        `json:"store_name"`
	PurchaseDate string        `json:"purchase_date"`
	Currency     string        `json:"currency"`
	Items        []ReceiptItem `json:"items"`
	Total        float64       `json:"total"`
}

// NewReceiptContext normalizes a parsed receipt into a ReceiptContext.
// Missing currency defaults to SGD.
func NewReceiptContext(parsed ParsedReceipt) ReceiptContext {
	currency := strings.ToUpper(strings.TrimSpace(parsed.Currency))
	if currency == "" {
		currency = "SGD"
	}

	items := parsed.Items
	if items == nil {
		items = []ReceiptItem{}
	}

	return ReceiptContext{
		StoreName:    strings.ToLower(strings.TrimSpace(parsed.StoreName)),
		PurchaseDate: parsed.PurchaseDate,
		Total:        parsed.TotalAmount,
		Currency:     currency,
		Items:        items,
	}
}

// Snapshot returns the subset of the context that is embedded in rule
// suggestions for the reviewer.
func (c ReceiptContext) Snapshot() ReceiptSnapshot {
	return ReceiptSnapshot{
		StoreName:    c.StoreName,
		Total:        c.Total,
		Currency:     c.Currency,
		PurchaseDate: c.PurchaseDate,
	}
}

// ReceiptSnapshot is the condensed receipt view attached to every
// RuleSuggestion.
type ReceiptSnapshot struct {
	StoreName    string  `json:"store_name"`
	Currency     string  `json:"currency"`
	PurchaseDate string  `json:"purchase_date"`
	Total        float64 `json:"total"`
}
