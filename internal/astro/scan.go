package astro

import (
	"context"

	"jotshi_backend/internal/kundli"
	"jotshi_backend/internal/prompts"

	"github.com/sirupsen/logrus"
)

// ScanResult is the chart read from a photographed Kundli.
type ScanResult struct {
	Style      string            `json:"style"`
	Lagna      string            `json:"lagna"`
	Planets    map[string]string `json:"planets"`
	Confidence float64           `json:"confidence"`
	Notes      string            `json:"notes"`
	Chart      *kundli.Chart     `json:"chart,omitempty"`
	Fallback   bool              `json:"fallback"`
}

// FallbackScan is returned when the image cannot be interpreted.
func FallbackScan() ScanResult {
	return ScanResult{
		Style:      "unknown",
		Planets:    map[string]string{},
		Confidence: 0,
		Notes:      "We could not read this chart. Please upload a clearer photo or enter your birth details instead.",
		Fallback:   true,
	}
}

// ScanKundli interprets a chart image and rebuilds it as a Rasi chart.
func (s *Service) ScanKundli(ctx context.Context, image []byte, mimeType string) (ScanResult, error) {
	if s.vision == nil {
		logrus.Warn("Vision model not configured, returning fallback scan")
		return FallbackScan(), nil
	}
	system, user, err := s.prompts.Render(prompts.KundliScan, nil)
	if err != nil {
		return ScanResult{}, err
	}
	reply, err := s.vision.Describe(ctx, system, user, image, mimeType)
	var out ScanResult
	ok, err := s.decode(prompts.KundliScan, reply, err, &out)
	if err != nil {
		return ScanResult{}, err
	}
	if !ok {
		return FallbackScan(), nil
	}
	chart, ok := ChartFromScan(out.Lagna, out.Planets)
	if !ok {
		logrus.WithField("lagna", out.Lagna).Warn("Scanned chart has no valid ascendant, using fallback")
		return FallbackScan(), nil
	}
	out.Chart = &chart
	if out.Confidence < 0 || out.Confidence > 1 {
		out.Confidence = 0
	}
	return out, nil
}

// ChartFromScan places scanned planet signs into houses counted from the
// scanned ascendant. Unknown planets or signs are dropped.
func ChartFromScan(lagna string, planets map[string]string) (kundli.Chart, bool) {
	asc, err := kundli.ParseSign(lagna)
	if err != nil {
		return kundli.Chart{}, false
	}
	k := &kundli.Kundli{Lagna: asc}
	for _, p := range kundli.Planets {
		name, ok := lookupFold(planets, string(p))
		if !ok {
			continue
		}
		sign, err := kundli.ParseSign(name)
		if err != nil {
			continue
		}
		k.Positions = append(k.Positions, kundli.Position{Planet: p, Sign: sign})
	}
	chart, _ := k.Chart(kundli.Rasi)
	return chart, true
}
