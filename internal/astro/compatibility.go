package astro

import (
	"context"
	"fmt"
	"strings"

	"jotshi_backend/internal/kundli"
	"jotshi_backend/internal/prompts"
)

// Match combines the Guna Milan score with a written explanation.
type Match struct {
	Guna      kundli.Compatibility `json:"guna_milan"`
	Summary   string               `json:"summary"`
	Strengths []string             `json:"strengths"`
	Concerns  []string             `json:"concerns"`
	Advice    string               `json:"advice"`
	Fallback  bool                 `json:"fallback"`
}

// Compatibility scores two charts and asks the model to explain the result.
// The score itself never depends on the model.
func (s *Service) Compatibility(ctx context.Context, groom, bride *kundli.Kundli) (Match, error) {
	guna := kundli.GunaMilan(groom, bride)
	var kootas strings.Builder
	for _, k := range guna.Kootas {
		fmt.Fprintf(&kootas, "%s: %.1f/%.0f (%s)\n", k.Name, k.Score, k.Max, k.Detail)
	}
	data := map[string]string{
		"Chart":   groom.Summary(),
		"Partner": bride.Summary(),
		"Score":   fmt.Sprintf("%.1f", guna.Total),
		"Verdict": guna.Verdict,
		"Kootas":  kootas.String(),
	}
	var out Match
	ok, err := s.ask(ctx, prompts.Compatibility, data, &out)
	if err != nil {
		return Match{}, err
	}
	if !ok || out.Summary == "" {
		out = FallbackMatch(guna)
	}
	out.Guna = guna
	return out, nil
}

// FallbackMatch explains a Guna Milan result without the model.
func FallbackMatch(guna kundli.Compatibility) Match {
	m := Match{
		Guna:      guna,
		Summary:   fmt.Sprintf("The charts score %.1f of 36 points, which is traditionally considered %s.", guna.Total, guna.Verdict),
		Strengths: []string{},
		Concerns:  []string{},
		Advice:    "Consult an astrologer for a complete reading including Manglik status and dasha periods.",
		Fallback:  true,
	}
	for _, k := range guna.Kootas {
		switch {
		case k.Score == k.Max:
			m.Strengths = append(m.Strengths, fmt.Sprintf("Full marks in %s", k.Name))
		case k.Score == 0:
			m.Concerns = append(m.Concerns, fmt.Sprintf("No points in %s", k.Name))
		}
	}
	if guna.NadiDosha {
		m.Concerns = append(m.Concerns, "Nadi dosha is present")
	}
	if guna.BhakootDosha {
		m.Concerns = append(m.Concerns, "Bhakoot dosha is present")
	}
	return m
}
