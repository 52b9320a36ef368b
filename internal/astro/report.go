package astro

import (
	"context"
	"errors"
	"fmt"

	"jotshi_backend/internal/kundli"
	"jotshi_backend/internal/prompts"
)

// ErrUnknownSection is returned for report sections that are not offered.
var ErrUnknownSection = errors.New("unknown report section")

// ReportSections lists the report chapters a user can request.
var ReportSections = []string{"overview", "career", "marriage", "health", "finance", "dasha"}

// Period is a time-bounded prediction.
type Period struct {
	Label      string `json:"label"`
	From       string `json:"from"`
	To         string `json:"to"`
	Prediction string `json:"prediction"`
}

// Report is one chapter of a written Kundli report.
type Report struct {
	Section    string   `json:"section"`
	Title      string   `json:"title"`
	Summary    string   `json:"summary"`
	Highlights []string `json:"highlights"`
	Periods    []Period `json:"periods"`
	Fallback   bool     `json:"fallback"`
}

// GenerateReport writes one report section for k.
func (s *Service) GenerateReport(ctx context.Context, k *kundli.Kundli, section string) (Report, error) {
	if !validSection(section) {
		return Report{}, fmt.Errorf("%w: %s", ErrUnknownSection, section)
	}
	var out Report
	ok, err := s.ask(ctx, prompts.KundliReport, map[string]string{"Section": section, "Chart": k.Summary()}, &out)
	if err != nil {
		return Report{}, err
	}
	if !ok || out.Summary == "" {
		return FallbackReport(k, section), nil
	}
	out.Section = section
	return out, nil
}

// FallbackReport is the fixed report returned when the model reply is unusable.
func FallbackReport(k *kundli.Kundli, section string) Report {
	return Report{
		Section: section,
		Title:   fmt.Sprintf("%s Lagna: %s", k.Lagna, section),
		Summary: fmt.Sprintf("Your %s ascendant with the Moon in %s (%s nakshatra) shapes this area of life. A detailed reading is temporarily unavailable; please try again shortly.",
			k.Lagna, k.MoonSign, k.Nakshatra),
		Highlights: []string{
			fmt.Sprintf("Ascendant lord %s", k.Lagna.Lord()),
			fmt.Sprintf("Moon nakshatra %s, pada %d", k.Nakshatra, k.Pada),
		},
		Periods:  []Period{},
		Fallback: true,
	}
}

func validSection(section string) bool {
	for _, s := range ReportSections {
		if s == section {
			return true
		}
	}
	return false
}
