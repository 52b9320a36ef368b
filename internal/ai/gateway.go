package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// GatewayConfig configures an OpenAI-compatible chat completions endpoint.
type GatewayConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Gateway is a chat completions client.
type Gateway struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Stream      bool      `json:"stream,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Error *apiError `json:"error"`
}

// NewGateway creates a gateway client.
func NewGateway(cfg GatewayConfig) *Gateway {
	if cfg.Timeout == 0 {
		cfg.Timeout = 2 * time.Minute
	}
	return &Gateway{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Model returns the configured model name.
func (g *Gateway) Model() string { return g.model }

// Complete sends a system and user prompt and returns the reply text.
func (g *Gateway) Complete(ctx context.Context, system, user string) (string, error) {
	start := time.Now()
	messages := []Message{{Role: "user", Content: user}}
	if system != "" {
		messages = append([]Message{{Role: "system", Content: system}}, messages...)
	}
	resp, err := g.post(ctx, chatRequest{Model: g.model, Messages: messages, Temperature: 0.7})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("API error: %s", out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("no completion returned")
	}
	logrus.WithFields(logrus.Fields{
		"model":    g.model,
		"duration": time.Since(start).String(),
	}).Debug("AI completion")
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

// Stream relays a streamed completion to fn fragment by fragment.
func (g *Gateway) Stream(ctx context.Context, messages []Message, fn func(delta string) error) error {
	resp, err := g.post(ctx, chatRequest{Model: g.model, Messages: messages, Stream: true})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return ReadSSE(resp.Body, fn)
}

// post sends a chat request and maps provider status codes onto errors.
// On success the caller owns the response body.
func (g *Gateway) post(ctx context.Context, body chatRequest) (*http.Response, error) {
	if g.apiKey == "" {
		return nil, ErrNotConfigured
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	if body.Stream {
		req.Header.Set("Accept", "text/event-stream")
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode == http.StatusOK {
		return resp, nil
	}
	defer resp.Body.Close()
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case http.StatusPaymentRequired:
		return nil, ErrCreditsExhausted
	}
	logrus.WithFields(logrus.Fields{
		"status": resp.StatusCode,
		"body":   strings.TrimSpace(string(msg)),
	}).Error("AI gateway error")
	return nil, fmt.Errorf("API request failed with status %d", resp.StatusCode)
}
