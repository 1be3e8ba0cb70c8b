// Package semantic adapts the external reasoning oracle that judges receipt
// consistency and plausibility. The adapter's responsibility is the contract:
// requests carry OCR text, the expected tax-regime hint and merchant
// candidates; responses are schema-validated, and any failure is replaced by
// the conservative fallback assessment so the aggregator always receives a
// well-formed input.
package semantic

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/wunderfauks/receiptguard/internal/common"
	"github.com/wunderfauks/receiptguard/internal/model"
	"github.com/wunderfauks/receiptguard/internal/service"
)

// Request is the oracle input contract.
type Request struct {
	OCRText            string
	CountryHint        string
	MerchantCandidates []string
}

// Oracle is the external reasoning capability. Implementations return the raw
// JSON assessment document; the adapter owns validation and fallback.
type Oracle interface {
	Assess(ctx context.Context, req Request) ([]byte, error)
}

// Validator produces a SemanticAssessment for OCR text. It never returns an
// error: degraded results surface as the fallback assessment.
type Validator interface {
	Validate(ctx context.Context, ocrText, countryHint string, merchantCandidates []string) model.SemanticAssessment
}

// Unavailable returns a Validator for deployments with no oracle configured.
// Every receipt receives the conservative fallback assessment.
func Unavailable() Validator {
	return unavailableValidator{}
}

type unavailableValidator struct{}

func (unavailableValidator) Validate(_ context.Context, _, _ string, _ []string) model.SemanticAssessment {
	return model.FallbackAssessment("validation unavailable")
}

// DefaultTimeout bounds a single oracle call.
const DefaultTimeout = 25 * time.Second

// Adapter implements Validator on top of an Oracle.
type Adapter struct {
	oracle    Oracle
	timeout   time.Duration
	retryOpts service.RetryOptions
}

// NewAdapter creates an adapter with the default timeout and retry policy.
func NewAdapter(oracle Oracle) *Adapter {
	return &Adapter{
		oracle:  oracle,
		timeout: DefaultTimeout,
		retryOpts: service.RetryOptions{
			MaxAttempts:  2,
			InitialDelay: time.Second,
		},
	}
}

// WithRetryOptions overrides the retry policy. Used in tests.
func (a *Adapter) WithRetryOptions(opts service.RetryOptions) *Adapter {
	a.retryOpts = opts
	return a
}

// Validate runs semantic validation. The oracle call is bounded by the
// adapter timeout and retried once; a failed or malformed response degrades
// to model.FallbackAssessment rather than an error.
func (a *Adapter) Validate(ctx context.Context, ocrText, countryHint string, merchantCandidates []string) model.SemanticAssessment {
	req := Request{
		OCRText:            ocrText,
		CountryHint:        countryHint,
		MerchantCandidates: merchantCandidates,
	}

	var raw []byte
	err := common.WithRetry(ctx, func() error {
		callCtx, cancel := context.WithTimeout(ctx, a.timeout)
		defer cancel()

		var callErr error
		raw, callErr = a.oracle.Assess(callCtx, req)
		return callErr
	}, a.retryOpts)
	if err != nil {
		slog.Warn("semantic validation unavailable",
			"country_hint", countryHint,
			"error", fmt.Errorf("%w: %v", common.ErrOracleUnavailable, err))
		return model.FallbackAssessment("validation unavailable")
	}

	assessment, err := decodeAssessment(raw)
	if err != nil {
		slog.Warn("semantic validation returned malformed response", "error", err)
		return model.FallbackAssessment("validation unavailable")
	}

	return assessment
}

// decodeAssessment validates the raw oracle document against the assessment
// schema before unmarshaling it.
func decodeAssessment(raw []byte) (model.SemanticAssessment, error) {
	if err := validateAgainstSchema(raw); err != nil {
		return model.SemanticAssessment{}, fmt.Errorf("%w: %v", common.ErrMalformedResponse, err)
	}

	var assessment model.SemanticAssessment
	if err := json.Unmarshal(raw, &assessment); err != nil {
		return model.SemanticAssessment{}, fmt.Errorf("%w: %v", common.ErrMalformedResponse, err)
	}

	if assessment.Checks.SuspiciousPatterns == nil {
		assessment.Checks.SuspiciousPatterns = []string{}
	}

	return assessment, nil
}
