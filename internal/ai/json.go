package ai

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrNoJSON is returned when a reply contains no JSON object.
var ErrNoJSON = errors.New("ai: no JSON object in reply")

// StripFences removes a surrounding markdown code fence (``` or ```json).
func StripFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return s
	}
	firstNewline := strings.Index(trimmed, "\n")
	lastFence := strings.LastIndex(trimmed, "```")
	if firstNewline == -1 || lastFence <= firstNewline {
		return s
	}
	return strings.TrimSpace(trimmed[firstNewline+1 : lastFence])
}

// FindObject returns the first balanced {...} block in s, honouring braces
// inside string literals.
func FindObject(s string) string {
	start := strings.Index(s, "{")
	if start == -1 {
		return ""
	}
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

// ExtractJSON decodes the JSON object embedded in a model reply into v.
func ExtractJSON(reply string, v any) error {
	body := StripFences(reply)
	if err := json.Unmarshal([]byte(body), v); err == nil {
		return nil
	}
	obj := FindObject(body)
	if obj == "" {
		return ErrNoJSON
	}
	return json.Unmarshal([]byte(obj), v)
}
