package semantic

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wunderfauks/receiptguard/internal/common"
	"github.com/wunderfauks/receiptguard/internal/service"
)

type stubOracle struct {
	response []byte
	err      error
	requests []Request
}

func (o *stubOracle) Assess(_ context.Context, req Request) ([]byte, error) {
	o.requests = append(o.requests, req)
	if o.err != nil {
		return nil, o.err
	}
	return o.response, nil
}

const validResponse = `{
	"merchant": {"name": "Starbucks", "confidence": 0.9, "matched_template": "starbucks_generic"},
	"extracted": {"currency": "SGD", "date": "2025-06-10", "time": "14:32", "subtotal": 11.47, "tax": 1.03, "total": 12.50, "receipt_id": "123456"},
	"checks": {"math_consistent": true, "tax_plausible": true, "formatting_plausible": true, "merchant_plausible": true, "suspicious_patterns": []},
	"fraud_likelihood": 0.1,
	"explanation": "Consistent receipt"
}`

func TestValidateDecodesOracleResponse(t *testing.T) {
	oracle := &stubOracle{response: []byte(validResponse)}
	adapter := NewAdapter(oracle)

	assessment := adapter.Validate(context.Background(), "ocr text", "SG", []string{"Starbucks"})

	assert.Equal(t, "Starbucks", assessment.Merchant.Name)
	assert.InDelta(t, 0.1, assessment.FraudLikelihood, 1e-9)
	assert.True(t, assessment.Checks.MathConsistent)
	require.NotNil(t, assessment.Extracted.Total)
	assert.InDelta(t, 12.50, *assessment.Extracted.Total, 1e-9)
	assert.NotNil(t, assessment.Checks.SuspiciousPatterns)

	// The request contract carries text, tax regime hint and candidates.
	require.Len(t, oracle.requests, 1)
	assert.Equal(t, "ocr text", oracle.requests[0].OCRText)
	assert.Equal(t, "SG", oracle.requests[0].CountryHint)
	assert.Equal(t, []string{"Starbucks"}, oracle.requests[0].MerchantCandidates)
}

func TestValidateOracleFailureFallsBack(t *testing.T) {
	oracle := &stubOracle{err: errors.New("oracle timeout")}
	adapter := NewAdapter(oracle).WithRetryOptions(service.RetryOptions{
		MaxAttempts:  2,
		InitialDelay: time.Millisecond,
	})

	assessment := adapter.Validate(context.Background(), "ocr", "SG", nil)

	// Failed calls are retried before giving up.
	assert.Len(t, oracle.requests, 2)

	assert.InDelta(t, 0.5, assessment.FraudLikelihood, 1e-9)
	assert.False(t, assessment.Checks.MathConsistent)
	assert.False(t, assessment.Checks.TaxPlausible)
	assert.Equal(t, []string{"validation unavailable"}, assessment.Checks.SuspiciousPatterns)
}

func TestValidateMalformedResponseFallsBack(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{name: "not json", response: "I think this receipt looks fine"},
		{name: "missing checks", response: `{"fraud_likelihood": 0.2}`},
		{name: "missing fraud likelihood", response: `{"checks": {"math_consistent": true, "tax_plausible": true, "formatting_plausible": true, "merchant_plausible": true}}`},
		{name: "likelihood out of range", response: `{"checks": {"math_consistent": true, "tax_plausible": true, "formatting_plausible": true, "merchant_plausible": true}, "fraud_likelihood": 1.7}`},
		{name: "wrong check type", response: `{"checks": {"math_consistent": "yes", "tax_plausible": true, "formatting_plausible": true, "merchant_plausible": true}, "fraud_likelihood": 0.1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter := NewAdapter(&stubOracle{response: []byte(tt.response)})
			assessment := adapter.Validate(context.Background(), "ocr", "SG", nil)
			assert.InDelta(t, 0.5, assessment.FraudLikelihood, 1e-9)
			assert.Equal(t, []string{"validation unavailable"}, assessment.Checks.SuspiciousPatterns)
		})
	}
}

func TestDecodeAssessmentReportsMalformedResponse(t *testing.T) {
	_, err := decodeAssessment([]byte("I think this receipt looks fine"))
	require.ErrorIs(t, err, common.ErrMalformedResponse)

	_, err = decodeAssessment([]byte(`{"fraud_likelihood": 0.2}`))
	require.ErrorIs(t, err, common.ErrMalformedResponse)
}

func TestValidateNullExtractedFields(t *testing.T) {
	response := `{
		"extracted": {"currency": null, "date": null, "subtotal": null, "tax": null, "total": null},
		"checks": {"math_consistent": false, "tax_plausible": false, "formatting_plausible": true, "merchant_plausible": true, "suspicious_patterns": ["rounded totals"]},
		"fraud_likelihood": 0.6
	}`
	adapter := NewAdapter(&stubOracle{response: []byte(response)})

	assessment := adapter.Validate(context.Background(), "ocr", "TH", nil)

	assert.Nil(t, assessment.Extracted.Total)
	assert.Equal(t, []string{"rounded totals"}, assessment.Checks.SuspiciousPatterns)
	assert.InDelta(t, 0.6, assessment.FraudLikelihood, 1e-9)
}

func TestUnavailableValidator(t *testing.T) {
	assessment := Unavailable().Validate(context.Background(), "ocr", "SG", nil)
	assert.InDelta(t, 0.5, assessment.FraudLikelihood, 1e-9)
	assert.False(t, assessment.Checks.MerchantPlausible)
}
