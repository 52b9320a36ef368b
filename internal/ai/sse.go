package ai

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// chunk is the subset of a streamed chat completion we read.
type chunk struct {
	Choices []struct {
		Delta *Message `json:"delta"`
	} `json:"choices"`
	Error *apiError `json:"error"`
}

type apiError struct {
	Message string `json:"message"`
}

// ReadSSE reads an OpenAI-style event stream from r and hands each non-empty
// choices[0].delta.content to fn. Comment lines, blank lines and chunks that
// do not parse are skipped; "data: [DONE]" ends the stream.
func ReadSSE(r io.Reader, fn func(delta string) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if !strings.HasPrefix(line, "data:") {
			continue // comments (":"), event names and keep-alives
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" {
			continue
		}
		if data == "[DONE]" {
			return nil
		}
		var c chunk
		if err := json.Unmarshal([]byte(data), &c); err != nil {
			continue
		}
		if c.Error != nil {
			return fmt.Errorf("stream error: %s", c.Error.Message)
		}
		if len(c.Choices) == 0 || c.Choices[0].Delta == nil || c.Choices[0].Delta.Content == "" {
			continue
		}
		if err := fn(c.Choices[0].Delta.Content); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// DeltaFrame renders content as an OpenAI-style SSE data line so clients
// written against the gateway can read the relayed stream unchanged.
func DeltaFrame(content string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{{"delta": map[string]string{"content": content}}},
	})
	return "data: " + string(b) + "\n\n"
}
