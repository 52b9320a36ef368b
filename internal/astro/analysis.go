package astro

import (
	"context"
	"fmt"
	"strings"

	"jotshi_backend/internal/kundli"
	"jotshi_backend/internal/prompts"
)

// Lucky holds favourable colours, numbers and weekdays.
type Lucky struct {
	Colors  []string `json:"colors"`
	Numbers []int    `json:"numbers"`
	Days    []string `json:"days"`
}

// Analysis is the AI reading of a chart.
type Analysis struct {
	Personality   string   `json:"personality"`
	Career        string   `json:"career"`
	Relationships string   `json:"relationships"`
	Health        string   `json:"health"`
	Finance       string   `json:"finance"`
	Strengths     []string `json:"strengths"`
	Challenges    []string `json:"challenges"`
	Remedies      []string `json:"remedies"`
	Lucky         Lucky    `json:"lucky"`
	Fallback      bool     `json:"fallback"`
}

// signTraits gives a one-line temperament per Lagna for fallback readings.
var signTraits = map[kundli.Sign]string{
	kundli.Aries:       "energetic, direct and quick to take initiative",
	kundli.Taurus:      "steady, patient and drawn to comfort and beauty",
	kundli.Gemini:      "curious, communicative and adaptable",
	kundli.Cancer:      "caring, intuitive and protective of family",
	kundli.Leo:         "confident, generous and a natural leader",
	kundli.Virgo:       "analytical, diligent and service-minded",
	kundli.Libra:       "diplomatic, fair-minded and relationship-oriented",
	kundli.Scorpio:     "intense, perceptive and determined",
	kundli.Sagittarius: "optimistic, philosophical and freedom-loving",
	kundli.Capricorn:   "disciplined, practical and ambitious",
	kundli.Aquarius:    "independent, inventive and humanitarian",
	kundli.Pisces:      "compassionate, imaginative and spiritual",
}

var luckyDay = map[kundli.Planet]string{
	kundli.Sun: "Sunday", kundli.Moon: "Monday", kundli.Mars: "Tuesday", kundli.Mercury: "Wednesday",
	kundli.Jupiter: "Thursday", kundli.Venus: "Friday", kundli.Saturn: "Saturday",
}

var luckyColor = map[kundli.Planet]string{
	kundli.Sun: "Orange", kundli.Moon: "White", kundli.Mars: "Red", kundli.Mercury: "Green",
	kundli.Jupiter: "Yellow", kundli.Venus: "Pink", kundli.Saturn: "Blue",
}

var luckyNumber = map[kundli.Planet]int{
	kundli.Sun: 1, kundli.Moon: 2, kundli.Jupiter: 3, kundli.Mercury: 5,
	kundli.Venus: 6, kundli.Saturn: 8, kundli.Mars: 9,
}

// AnalyzeKundli asks the model for a reading of k.
func (s *Service) AnalyzeKundli(ctx context.Context, k *kundli.Kundli, name string) (Analysis, error) {
	var out Analysis
	ok, err := s.ask(ctx, prompts.KundliAnalysis, map[string]string{"Name": nameOr(name), "Chart": k.Summary()}, &out)
	if err != nil {
		return Analysis{}, err
	}
	if !ok || out.Personality == "" {
		return FallbackAnalysis(k), nil
	}
	return out, nil
}

// FallbackAnalysis builds a generic reading from the Lagna and Moon sign.
func FallbackAnalysis(k *kundli.Kundli) Analysis {
	lord := k.Lagna.Lord()
	moonLord := k.MoonSign.Lord()
	return Analysis{
		Personality:   fmt.Sprintf("With %s rising you come across as %s. Your Moon in %s colours your emotional nature.", k.Lagna, signTraits[k.Lagna], k.MoonSign),
		Career:        fmt.Sprintf("%s, lord of your ascendant, favours work where you can be %s.", lord, firstTrait(k.Lagna)),
		Relationships: fmt.Sprintf("The Moon in %s seeks partners who respect your need to be %s.", k.MoonSign, firstTrait(k.MoonSign)),
		Health:        "Keep a regular routine and balance rest with activity.",
		Finance:       "Steady saving and patience bring better results than speculation.",
		Strengths:     []string{strings.Split(signTraits[k.Lagna], ",")[0], strings.Split(signTraits[k.MoonSign], ",")[0]},
		Challenges:    []string{"Balancing ambition with patience"},
		Remedies:      []string{fmt.Sprintf("Offer prayers on %s", luckyDay[lord])},
		Lucky: Lucky{
			Colors:  uniq(luckyColor[lord], luckyColor[moonLord]),
			Numbers: uniqInt(luckyNumber[lord], luckyNumber[moonLord]),
			Days:    uniq(luckyDay[lord], luckyDay[moonLord]),
		},
		Fallback: true,
	}
}

func firstTrait(s kundli.Sign) string {
	return strings.TrimSpace(strings.Split(signTraits[s], ",")[0])
}

func nameOr(name string) string {
	if strings.TrimSpace(name) == "" {
		return "the native"
	}
	return name
}

func uniq(vals ...string) []string {
	out := make([]string, 0, len(vals))
	seen := map[string]bool{}
	for _, v := range vals {
		if v != "" && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

func uniqInt(vals ...int) []int {
	out := make([]int, 0, len(vals))
	seen := map[int]bool{}
	for _, v := range vals {
		if v != 0 && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
