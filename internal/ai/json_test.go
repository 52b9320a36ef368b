package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reading struct {
	Summary string   `json:"summary"`
	Scores  []int    `json:"scores"`
	Tags    []string `json:"tags"`
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  reading
	}{
		{"plain", `{"summary":"calm","scores":[1,2]}`, reading{Summary: "calm", Scores: []int{1, 2}}},
		{"fenced", "```json\n{\"summary\":\"fenced\"}\n```", reading{Summary: "fenced"}},
		{"prose around", "Here is your reading:\n{\"summary\":\"wrapped\"}\nBlessings!", reading{Summary: "wrapped"}},
		{"brace in string", `Sure. {"summary":"use {curly} care","tags":["a}"]} done`, reading{Summary: "use {curly} care", Tags: []string{"a}"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got reading
			require.NoError(t, ExtractJSON(tt.reply, &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractJSON_NoObject(t *testing.T) {
	var got reading
	assert.ErrorIs(t, ExtractJSON("The stars are silent today.", &got), ErrNoJSON)
	assert.Error(t, ExtractJSON(`{"summary": "unterminated`, &got))
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripFences("```\n{\"a\":1}\n```"))
	assert.Equal(t, "no fence", StripFences("no fence"))
	assert.Equal(t, "```only", StripFences("```only"))
}
