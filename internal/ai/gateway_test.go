package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func newTestGateway(t *testing.T, h http.HandlerFunc) *Gateway {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewGateway(GatewayConfig{APIKey: "test-key", BaseURL: srv.URL + "/", Model: "test-model"})
}

func TestGateway_Complete(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.False(t, req.Stream)

		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"  Jupiter smiles  "}}]}`)
	})

	out, err := g.Complete(context.Background(), "be kind", "read my chart")
	require.NoError(t, err)
	assert.Equal(t, "Jupiter smiles", out)
}

func TestGateway_StatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusTooManyRequests, ErrRateLimited},
		{http.StatusPaymentRequired, ErrCreditsExhausted},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})
			_, err := g.Complete(context.Background(), "", "hi")
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, IsQuotaError(err))
		})
	}

	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	_, err := g.Complete(context.Background(), "", "hi")
	assert.ErrorContains(t, err, "status 500")
	assert.False(t, IsQuotaError(err))
}

func TestGateway_NotConfigured(t *testing.T) {
	g := NewGateway(GatewayConfig{BaseURL: "http://unused"})
	_, err := g.Complete(context.Background(), "", "hi")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestGateway_Stream(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Stream)
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))

		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, DeltaFrame("Shani "))
		fmt.Fprint(w, DeltaFrame("returns"))
		fmt.Fprint(w, "data: [DONE]\n\n")
	})

	var out string
	err := g.Stream(context.Background(), []Message{{Role: "user", Content: "saturn?"}}, func(d string) error {
		out += d
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Shani returns", out)
}

func TestGateway_StreamRateLimitedBeforeFirstFragment(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	called := false
	err := g.Stream(context.Background(), nil, func(string) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.False(t, called)
}

func TestMapGenAIError(t *testing.T) {
	assert.ErrorIs(t, mapGenAIError(genai.APIError{Code: 429}), ErrRateLimited)
	assert.ErrorIs(t, mapGenAIError(fmt.Errorf("wrapped: %w", genai.APIError{Code: 402})), ErrCreditsExhausted)
	assert.ErrorContains(t, mapGenAIError(genai.APIError{Code: 500, Message: "down"}), "GenAI generate failed")
}

func TestNewGemini_RequiresKey(t *testing.T) {
	_, err := NewGemini(context.Background(), "", "")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
