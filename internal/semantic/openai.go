package semantic

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/wunderfauks/receiptguard/internal/common"
)

// Config holds configuration for the OpenAI-backed oracle.
type Config struct {
	APIKey    string
	Model     string
	BaseURL   string
	MaxTokens int
}

// openAIOracle implements Oracle against the OpenAI chat completions API.
type openAIOracle struct {
	httpClient *http.Client
	apiKey     string
	model      string
	baseURL    string
	maxTokens  int
}

// NewOpenAIOracle creates an oracle backed by the OpenAI API.
func NewOpenAIOracle(cfg Config) (Oracle, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: OpenAI API key", common.ErrMissingConfig)
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 800
	}

	return &openAIOracle{
		apiKey:    cfg.APIKey,
		model:     model,
		baseURL:   baseURL,
		maxTokens: maxTokens,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}, nil
}

// Assess sends the validation request and returns the raw JSON assessment.
func (o *openAIOracle) Assess(ctx context.Context, req Request) ([]byte, error) {
	requestBody := map[string]any{
		"model": o.model,
		"messages": []map[string]string{
			{
				"role":    "system",
				"content": "You are a receipt fraud detection expert. Return only valid JSON.",
			},
			{
				"role":    "user",
				"content": buildPrompt(req),
			},
		},
		"temperature":     0,
		"max_tokens":      o.maxTokens,
		"response_format": map[string]string{"type": "json_object"},
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", strings.NewReader(string(jsonBody)))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := fmt.Errorf("OpenAI API error (status %d): %s", resp.StatusCode, string(body))
		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			return nil, fmt.Errorf("%w: %v", common.ErrRateLimit, apiErr)
		case resp.StatusCode >= http.StatusInternalServerError:
			return nil, &common.RetryableError{Err: apiErr, Retryable: true}
		default:
			return nil, &common.RetryableError{Err: apiErr, Retryable: false}
		}
	}

	var response chatCompletionResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("no completion choices returned")
	}

	content := cleanMarkdownWrapper(response.Choices[0].Message.Content)
	return []byte(content), nil
}

func buildPrompt(req Request) string {
	candidates := "none"
	if len(req.MerchantCandidates) > 0 {
		candidates = strings.Join(req.MerchantCandidates, ", ")
	}

	return fmt.Sprintf(`You are a receipt fraud detection system.

INPUTS:
- OCR_TEXT: raw OCR text from a receipt image
- COUNTRY_HINT: %s
- MERCHANT_CANDIDATES: %s

TASK:
1) Extract key fields (merchant, date, time, currency, subtotal, tax, total, receipt_id)
2) Validate internal consistency:
   - subtotal + tax matches total (allow small rounding of 0.02)
   - tax rate plausible for %s (SG GST = 9%%, TH VAT = 7%%)
   - formatting & layout plausibility
   - date format consistency
3) Detect suspicious patterns:
   - Overly perfect text with no OCR errors
   - Inconsistent formatting
   - Missing typical receipt elements
   - Wrong currency for country
   - Impossible prices or dates
4) If merchant candidates exist, check if the receipt matches one

Return ONLY valid JSON (no markdown, no explanations outside JSON):
{
  "merchant": {"name": "string or null", "confidence": 0.0, "matched_template": "string or null"},
  "extracted": {"currency": "string or null", "date": "YYYY-MM-DD or null", "time": "HH:MM or null", "subtotal": 0.0, "tax": 0.0, "total": 0.0, "receipt_id": "string or null"},
  "checks": {"math_consistent": true, "tax_plausible": true, "formatting_plausible": true, "merchant_plausible": true, "suspicious_patterns": []},
  "fraud_likelihood": 0.0,
  "explanation": "string"
}

OCR_TEXT:
"""
%s
"""`, req.CountryHint, candidates, req.CountryHint, req.OCRText)
}

// cleanMarkdownWrapper strips ```json fences some models wrap around output.
func cleanMarkdownWrapper(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}

// chatCompletionResponse is the subset of the OpenAI response we consume.
type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}
