package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_AllPromptsPresent(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	for _, name := range []string{KundliAnalysis, KundliReport, Compatibility, KundliScan, Panchang, AstroBot} {
		sys, _, err := c.Render(name, map[string]any{})
		require.NoError(t, err, name)
		assert.NotEmpty(t, sys, name)
	}
}

func TestRender_FillsTemplate(t *testing.T) {
	c := MustLoad()
	sys, user, err := c.Render(Panchang, map[string]string{"Date": "2026-10-19", "Place": "Varanasi"})
	require.NoError(t, err)
	assert.Contains(t, sys, "Panchang")
	assert.Contains(t, user, "2026-10-19 at Varanasi")
}

func TestRender_AstroBotChartOptional(t *testing.T) {
	c := MustLoad()
	sys, _, err := c.Render(AstroBot, map[string]string{})
	require.NoError(t, err)
	assert.NotContains(t, sys, "birth chart")

	sys, _, err = c.Render(AstroBot, map[string]string{"Chart": "Lagna: Leo"})
	require.NoError(t, err)
	assert.Contains(t, sys, "Lagna: Leo")
}

func TestRender_Unknown(t *testing.T) {
	_, _, err := MustLoad().Render("horoscope", nil)
	assert.Error(t, err)
}

func TestParse_BadTemplate(t *testing.T) {
	_, err := Parse([]byte("broken:\n  system: \"{{.Unclosed\"\n"))
	assert.Error(t, err)
}
