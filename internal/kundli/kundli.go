package kundli

import (
	"fmt"
	"strings"
)

// Kundli is a computed birth chart.
type Kundli struct {
	Birth     BirthDetails `json:"birth" yaml:"birth"`
	Ascendant float64      `json:"ascendant" yaml:"ascendant"`
	Lagna     Sign         `json:"lagna" yaml:"lagna"`
	MoonSign  Sign         `json:"moon_sign" yaml:"moon_sign"`
	SunSign   Sign         `json:"sun_sign" yaml:"sun_sign"`
	Nakshatra string       `json:"nakshatra" yaml:"nakshatra"`
	Pada      int          `json:"pada" yaml:"pada"`
	Positions []Position   `json:"positions" yaml:"positions"`

	moonNakshatra int
}

// New computes the Kundli for the given birth details.
func New(b BirthDetails) *Kundli {
	asc := trunc2(Ascendant(b))
	k := &Kundli{
		Birth:     b,
		Ascendant: asc,
		Lagna:     SignOf(asc),
		Positions: SamplePositions(b),
	}
	moon := k.Position(Moon)
	k.MoonSign = moon.Sign
	k.SunSign = k.Position(Sun).Sign
	k.moonNakshatra = NakshatraIndex(moon.Longitude)
	k.Nakshatra = moon.Nakshatra
	k.Pada = moon.Pada
	return k
}

// Position returns the placement of p. Every Kundli carries all nine grahas.
func (k *Kundli) Position(p Planet) Position {
	for _, pos := range k.Positions {
		if pos.Planet == p {
			return pos
		}
	}
	return Position{Planet: p}
}

// MoonNakshatra returns the 0-based index of the Moon's lunar mansion.
func (k *Kundli) MoonNakshatra() int { return k.moonNakshatra }

// Summary renders the chart as plain text suitable for a prompt.
func (k *Kundli) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Birth: %s at %.4f,%.4f", k.Birth.DateTime.Format("2006-01-02 15:04 -07:00"), k.Birth.Latitude, k.Birth.Longitude)
	if k.Birth.Place != "" {
		fmt.Fprintf(&sb, " (%s)", k.Birth.Place)
	}
	fmt.Fprintf(&sb, "\nLagna: %s %.2f°\nMoon sign: %s, Sun sign: %s, Nakshatra: %s pada %d\n",
		k.Lagna, DegreeInSign(k.Ascendant), k.MoonSign, k.SunSign, k.Nakshatra, k.Pada)
	for _, p := range k.Positions {
		retro := ""
		if p.Retrograde {
			retro = " (R)"
		}
		fmt.Fprintf(&sb, "%s: %s %.2f° house %d, %s%s\n",
			p.Planet, p.Sign, p.Degree, k.Lagna.Distance(p.Sign), p.Nakshatra, retro)
	}
	return sb.String()
}
