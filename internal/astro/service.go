// Package astro turns charts into model-written readings. Replies are parsed
// best-effort; when a reply cannot be used a fixed fallback is returned, except
// for rate-limit and credit errors which always reach the caller.
package astro

import (
	"context"
	"fmt"
	"strings"

	"jotshi_backend/internal/ai"
	"jotshi_backend/internal/prompts"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// Service bundles the model clients and prompt catalogue.
type Service struct {
	text    ai.Completer
	stream  ai.Streamer
	vision  ai.Vision
	prompts *prompts.Catalogue
	rdb     *redis.Client
	group   singleflight.Group
}

// NewService wires the analysis service. vision may be nil, in which case
// chart scans always return the fallback payload.
func NewService(text ai.Completer, stream ai.Streamer, vision ai.Vision, catalogue *prompts.Catalogue, rdb *redis.Client) *Service {
	return &Service{text: text, stream: stream, vision: vision, prompts: catalogue, rdb: rdb}
}

// ask renders a prompt, sends it to the text model and decodes the JSON reply
// into out. A false return with a nil error means the caller should fall back.
func (s *Service) ask(ctx context.Context, name string, data any, out any) (bool, error) {
	system, user, err := s.prompts.Render(name, data)
	if err != nil {
		return false, err
	}
	reply, err := s.text.Complete(ctx, system, user)
	return s.decode(name, reply, err, out)
}

func (s *Service) decode(name, reply string, err error, out any) (bool, error) {
	if err != nil {
		if ai.IsQuotaError(err) {
			return false, err
		}
		logrus.WithFields(logrus.Fields{
			"prompt": name,
			"error":  err.Error(),
		}).Warn("AI request failed, using fallback")
		return false, nil
	}
	if err := ai.ExtractJSON(reply, out); err != nil {
		logrus.WithFields(logrus.Fields{
			"prompt": name,
			"error":  err.Error(),
			"reply":  truncate(reply, 200),
		}).Warn("AI reply was not valid JSON, using fallback")
		return false, nil
	}
	return true, nil
}

// Chat streams an AstroBot answer. chart may be empty.
func (s *Service) Chat(ctx context.Context, chart string, history []ai.Message, fn func(delta string) error) error {
	if s.stream == nil {
		return ai.ErrNotConfigured
	}
	system, _, err := s.prompts.Render(prompts.AstroBot, map[string]string{"Chart": chart})
	if err != nil {
		return err
	}
	messages := make([]ai.Message, 0, len(history)+1)
	messages = append(messages, ai.Message{Role: "system", Content: system})
	for _, m := range history {
		if m.Role != "user" && m.Role != "assistant" {
			return fmt.Errorf("invalid message role %q", m.Role)
		}
		messages = append(messages, m)
	}
	return s.stream.Stream(ctx, messages, fn)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func lookupFold(m map[string]string, key string) (string, bool) {
	for k, v := range m {
		if strings.EqualFold(strings.TrimSpace(k), key) {
			return v, true
		}
	}
	return "", false
}
