package fraud

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wunderfauks/receiptguard/internal/model"
)

func TestMostlyNonASCIILetters(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{name: "english receipt", text: "7-Eleven Total 12.50 Thank you", want: false},
		{name: "thai receipt", text: "เซเว่น อีเลฟเว่น ยอดรวม ขอบคุณ", want: true},
		{name: "mixed but mostly english", text: "Lotus's Tesco ยอดรวม total amount payable today", want: false},
		{name: "digits only", text: "123 456 7.89", want: false},
		{name: "empty text", text: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mostlyNonASCIILetters(tt.text))
		})
	}
}

func TestCountryMismatch(t *testing.T) {
	tests := []struct {
		name     string
		hint     string
		currency string
		want     bool
	}{
		{name: "SGD in SG", hint: "SG", currency: "SGD", want: false},
		{name: "THB in SG", hint: "SG", currency: "THB", want: true},
		{name: "THB in TH", hint: "TH", currency: "THB", want: false},
		{name: "lowercase currency accepted", hint: "sg", currency: "sgd", want: false},
		{name: "unknown hint never flags", hint: "XX", currency: "USD", want: false},
		{name: "absent currency never flags", hint: "SG", currency: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, countryMismatch(tt.hint, tt.currency))
		})
	}
}

func TestDateOutOfRange(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		date string
		want bool
	}{
		{name: "today", date: "2025-06-15", want: false},
		{name: "a week old", date: "2025-06-08", want: false},
		{name: "older than window", date: "2025-05-20", want: true},
		{name: "future date", date: "2025-06-20", want: true},
		{name: "tomorrow tolerated", date: "2025-06-16", want: false},
		{name: "absent date", date: "", want: false},
		{name: "unparseable date", date: "15/06/2025", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, dateOutOfRange(tt.date, now))
		})
	}
}

func TestComputeReceiptSignals(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	extracted := model.ExtractedFields{Currency: "THB", Date: "2025-04-01"}

	signals := ComputeReceiptSignals("เซเว่น อีเลฟเว่น ยอดรวม", "SG", extracted, now)

	assert.True(t, signals.NonEnglish)
	assert.True(t, signals.CountryMismatch)
	assert.True(t, signals.DateOutOfRange)
	assert.NotNil(t, signals.RedFlags)
}
