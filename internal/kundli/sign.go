// Package kundli builds Vedic birth charts and the divisional charts derived
// from them. Planetary positions are mean-motion placeholders, good enough to
// render a plausible chart but not an ephemeris.
package kundli

import (
	"fmt"
	"math"
	"strings"
)

// Sign is a zodiac sign numbered 1 (Aries) through 12 (Pisces).
type Sign int

const (
	Aries Sign = iota + 1
	Taurus
	Gemini
	Cancer
	Leo
	Virgo
	Libra
	Scorpio
	Sagittarius
	Capricorn
	Aquarius
	Pisces
)

var signNames = [...]string{"", "Aries", "Taurus", "Gemini", "Cancer", "Leo", "Virgo",
	"Libra", "Scorpio", "Sagittarius", "Capricorn", "Aquarius", "Pisces"}

var signLords = [...]Planet{"", Mars, Venus, Mercury, Moon, Sun, Mercury,
	Venus, Mars, Jupiter, Saturn, Saturn, Jupiter}

func (s Sign) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Sign(%d)", int(s))
	}
	return signNames[s]
}

// Valid reports whether s is one of the twelve signs.
func (s Sign) Valid() bool { return s >= Aries && s <= Pisces }

// Lord returns the ruling planet of the sign.
func (s Sign) Lord() Planet { return signLords[s] }

// Odd reports whether the sign is odd (masculine): Aries, Gemini, Leo...
func (s Sign) Odd() bool { return s%2 == 1 }

// Add moves n signs forward (negative n moves backward), wrapping around Pisces.
func (s Sign) Add(n int) Sign {
	return Sign(((int(s)-1+n)%12+12)%12 + 1)
}

// Distance counts signs from s to other, inclusive of both: Aries to Aries is 1,
// Aries to Pisces is 12.
func (s Sign) Distance(other Sign) int {
	return ((int(other)-int(s))%12+12)%12 + 1
}

// MarshalText renders the sign by name.
func (s Sign) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// ParseSign accepts a sign name (case-insensitive).
func ParseSign(name string) (Sign, error) {
	for i := Aries; i <= Pisces; i++ {
		if strings.EqualFold(signNames[i], strings.TrimSpace(name)) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown sign %q", name)
}

// SignOf returns the sign containing a sidereal longitude.
func SignOf(longitude float64) Sign {
	return Sign(int(Normalize(longitude)/30) + 1)
}

// DegreeInSign returns the offset of a longitude inside its sign, in [0, 30).
func DegreeInSign(longitude float64) float64 {
	return math.Mod(Normalize(longitude), 30)
}

// Normalize folds an angle into [0, 360).
func Normalize(deg float64) float64 {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	if d >= 360 {
		d = 0
	}
	return d
}

// UnmarshalText parses a sign name.
func (s *Sign) UnmarshalText(b []byte) error {
	v, err := ParseSign(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
