package semantic

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wunderfauks/receiptguard/internal/common"
)

func TestNewOpenAIOracleRequiresAPIKey(t *testing.T) {
	_, err := NewOpenAIOracle(Config{})
	require.ErrorIs(t, err, common.ErrMissingConfig)
}

func TestOpenAIOracleClassifiesAPIErrors(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		wantRateLimit bool
		wantRetryable bool
	}{
		{name: "rate limited", status: http.StatusTooManyRequests, wantRateLimit: true, wantRetryable: true},
		{name: "server error", status: http.StatusInternalServerError, wantRetryable: true},
		{name: "bad request", status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error": {"message": "nope"}}`))
			}))
			defer srv.Close()

			oracle, err := NewOpenAIOracle(Config{APIKey: "test-key", BaseURL: srv.URL})
			require.NoError(t, err)

			_, err = oracle.Assess(context.Background(), Request{OCRText: "receipt"})
			require.Error(t, err)
			assert.Equal(t, tt.wantRateLimit, errors.Is(err, common.ErrRateLimit))
			assert.Equal(t, tt.wantRetryable, common.IsRetryable(err))
		})
	}
}

func TestOpenAIOracleReturnsCompletionContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": "` + "```json\\n{\\\"ok\\\": true}\\n```" + `"}}]}`))
	}))
	defer srv.Close()

	oracle, err := NewOpenAIOracle(Config{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)

	raw, err := oracle.Assess(context.Background(), Request{OCRText: "receipt"})
	require.NoError(t, err)

	// Markdown fences around the JSON document are stripped.
	assert.JSONEq(t, `{"ok": true}`, string(raw))
}
