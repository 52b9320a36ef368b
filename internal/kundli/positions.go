package kundli

import (
	"fmt"
	"math"
	"time"
)

// BirthDetails are the inputs to a chart.
type BirthDetails struct {
	Name      string    `json:"name,omitempty" yaml:"name,omitempty"`
	DateTime  time.Time `json:"date_time" yaml:"date_time"` // local time with its zone offset
	Latitude  float64   `json:"latitude" yaml:"latitude"`
	Longitude float64   `json:"longitude" yaml:"longitude"`
	Place     string    `json:"place,omitempty" yaml:"place,omitempty"`
}

// ParseBirthDetails combines a YYYY-MM-DD date, an HH:MM clock time and a UTC
// offset in hours into BirthDetails.
func ParseBirthDetails(date, clock string, tzOffsetHours, lat, lon float64) (BirthDetails, error) {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return BirthDetails{}, fmt.Errorf("coordinates out of range: %.4f,%.4f", lat, lon)
	}
	if tzOffsetHours < -14 || tzOffsetHours > 14 {
		return BirthDetails{}, fmt.Errorf("timezone offset out of range: %.2f", tzOffsetHours)
	}
	if clock == "" {
		clock = "12:00"
	}
	zone := time.FixedZone("local", int(math.Round(tzOffsetHours*3600)))
	t, err := time.ParseInLocation("2006-01-02 15:04", date+" "+clock, zone)
	if err != nil {
		return BirthDetails{}, fmt.Errorf("invalid birth date/time: %w", err)
	}
	return BirthDetails{DateTime: t, Latitude: lat, Longitude: lon}, nil
}

var j2000 = time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)

// daysSinceJ2000 returns fractional days between the J2000 epoch and t.
func daysSinceJ2000(t time.Time) float64 {
	return t.UTC().Sub(j2000).Hours() / 24
}

// Ayanamsa approximates the Lahiri precession offset on a given day.
func Ayanamsa(d float64) float64 {
	return 23.853 + (d/365.25)*50.29/3600
}

// meanElements holds a mean longitude at J2000 and its daily motion.
type meanElements struct {
	l0, rate float64
}

var outerPlanets = map[Planet]meanElements{
	Mars:    {355.433, 0.524039},
	Jupiter: {34.351, 0.083056},
	Saturn:  {50.078, 0.033371},
}

// SamplePositions returns deterministic placeholder sidereal positions for
// the nine grahas. The same birth details always give the same positions.
func SamplePositions(b BirthDetails) []Position {
	d := daysSinceJ2000(b.DateTime)
	ayan := Ayanamsa(d)

	sun := 280.460 + 0.9856474*d
	moon := 218.316 + 13.176396*d
	// Inner planets swing around the Sun within their greatest elongation.
	mercury := sun + 22*math.Sin(2*math.Pi*d/115.88)
	venus := sun + 45*math.Sin(2*math.Pi*d/583.92)
	rahu := 125.045 - 0.052954*d

	out := []Position{
		newPosition(Sun, sun-ayan, false),
		newPosition(Moon, moon-ayan, false),
	}
	for _, p := range []Planet{Mars, Mercury, Jupiter, Venus, Saturn} {
		var lon float64
		switch p {
		case Mercury:
			lon = mercury
		case Venus:
			lon = venus
		default:
			el := outerPlanets[p]
			lon = el.l0 + el.rate*d
		}
		out = append(out, newPosition(p, lon-ayan, retrogradeNearOpposition(p, lon, sun)))
	}
	out = append(out,
		newPosition(Rahu, rahu-ayan, true),
		newPosition(Ketu, rahu+180-ayan, true),
	)
	return out
}

// retrogradeNearOpposition marks superior planets retrograde around their
// opposition to the Sun, where apparent motion reverses.
func retrogradeNearOpposition(p Planet, lon, sun float64) bool {
	if _, outer := outerPlanets[p]; !outer {
		return false
	}
	elong := Normalize(lon - sun)
	return elong > 150 && elong < 210
}

// Ascendant returns the sidereal longitude of the eastern horizon at birth.
func Ascendant(b BirthDetails) float64 {
	d := daysSinceJ2000(b.DateTime)
	lst := rad(Normalize(280.46061837 + 360.98564736629*d + b.Longitude))
	eps := rad(23.4393 - 0.0000004*d)
	lat := b.Latitude
	if lat > 89 {
		lat = 89
	} else if lat < -89 {
		lat = -89
	}
	asc := math.Atan2(math.Cos(lst), -(math.Sin(lst)*math.Cos(eps) + math.Tan(rad(lat))*math.Sin(eps)))
	return Normalize(deg(asc) - Ayanamsa(d))
}

func rad(d float64) float64 { return d * math.Pi / 180 }
func deg(r float64) float64 { return r * 180 / math.Pi }

// trunc2 cuts a value to two decimals without rounding up across a boundary.
func trunc2(v float64) float64 { return math.Floor(v*100) / 100 }
