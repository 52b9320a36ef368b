// Package ai talks to hosted generative models: an OpenAI-compatible chat
// completions gateway for text and streaming, and Gemini for images.
package ai

import (
	"context"
	"errors"
)

var (
	// ErrRateLimited is returned when the provider answers 429.
	ErrRateLimited = errors.New("ai: rate limit exceeded")
	// ErrCreditsExhausted is returned when the provider answers 402.
	ErrCreditsExhausted = errors.New("ai: credits exhausted")
	// ErrNotConfigured is returned when no API key was supplied.
	ErrNotConfigured = errors.New("ai: provider not configured")
)

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Completer produces a single text completion.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Streamer streams a completion, calling fn with each content fragment.
// Errors raised before the first fragment leave fn uncalled.
type Streamer interface {
	Stream(ctx context.Context, messages []Message, fn func(delta string) error) error
}

// Vision interprets an image.
type Vision interface {
	Describe(ctx context.Context, system, prompt string, image []byte, mimeType string) (string, error)
}

// IsQuotaError reports whether err is a rate-limit or credit error. These
// reach the caller and are never replaced by a fallback payload.
func IsQuotaError(err error) bool {
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrCreditsExhausted)
}
