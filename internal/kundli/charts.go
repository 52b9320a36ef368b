package kundli

import (
	"fmt"
	"math"
	"strings"
)

// ChartKind names a divisional chart.
type ChartKind string

const (
	Rasi    ChartKind = "rasi"    // D1, the birth chart itself
	Navamsa ChartKind = "navamsa" // D9
	Hora    ChartKind = "hora"    // D2
	Chandra ChartKind = "chandra" // Moon as ascendant
	Chalit  ChartKind = "chalit"  // Bhava chalit, equal houses centred on the ascendant degree
)

// ChartKinds lists every supported chart.
var ChartKinds = []ChartKind{Rasi, Navamsa, Hora, Chandra, Chalit}

// ParseChartKind maps a name (including the "lagna" and "d1"/"d9"/"d2"
// aliases) to a ChartKind.
func ParseChartKind(name string) (ChartKind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "rasi", "lagna", "d1", "":
		return Rasi, nil
	case "navamsa", "d9":
		return Navamsa, nil
	case "hora", "d2":
		return Hora, nil
	case "chandra", "moon":
		return Chandra, nil
	case "chalit", "bhava":
		return Chalit, nil
	}
	return "", fmt.Errorf("unknown chart kind %q", name)
}

// House is one of the twelve houses of a chart.
type House struct {
	Number  int      `json:"number" yaml:"number"`
	Sign    Sign     `json:"sign" yaml:"sign"`
	Planets []Planet `json:"planets" yaml:"planets"`
}

// Chart is a twelve-house layout.
type Chart struct {
	Kind   ChartKind `json:"kind" yaml:"kind"`
	Lagna  Sign      `json:"lagna" yaml:"lagna"`
	Houses [12]House `json:"houses" yaml:"houses"`
}

// HouseOf returns the house number (1-12) holding p, or 0 when absent.
func (c Chart) HouseOf(p Planet) int {
	for _, h := range c.Houses {
		for _, q := range h.Planets {
			if q == p {
				return h.Number
			}
		}
	}
	return 0
}

func emptyChart(kind ChartKind, lagna Sign) Chart {
	c := Chart{Kind: kind, Lagna: lagna}
	for i := range c.Houses {
		c.Houses[i] = House{Number: i + 1, Sign: lagna.Add(i), Planets: []Planet{}}
	}
	return c
}

// place puts p into the house occupied by sign s.
func (c *Chart) place(p Planet, s Sign) {
	h := c.Lagna.Distance(s) - 1
	c.Houses[h].Planets = append(c.Houses[h].Planets, p)
}

// Chart builds the requested divisional chart.
func (k *Kundli) Chart(kind ChartKind) (Chart, error) {
	switch kind {
	case Rasi:
		return k.signChart(Rasi, k.Lagna, func(p Position) Sign { return p.Sign }), nil
	case Chandra:
		return k.signChart(Chandra, k.MoonSign, func(p Position) Sign { return p.Sign }), nil
	case Navamsa:
		return k.signChart(Navamsa, NavamsaSign(k.Ascendant), func(p Position) Sign { return NavamsaSign(p.Longitude) }), nil
	case Hora:
		return k.signChart(Hora, HoraSign(k.Ascendant), func(p Position) Sign { return HoraSign(p.Longitude) }), nil
	case Chalit:
		return k.chalit(), nil
	}
	return Chart{}, fmt.Errorf("unknown chart kind %q", kind)
}

// Charts builds every supported chart keyed by kind.
func (k *Kundli) Charts() map[ChartKind]Chart {
	out := make(map[ChartKind]Chart, len(ChartKinds))
	for _, kind := range ChartKinds {
		c, _ := k.Chart(kind)
		out[kind] = c
	}
	return out
}

func (k *Kundli) signChart(kind ChartKind, lagna Sign, signOf func(Position) Sign) Chart {
	c := emptyChart(kind, lagna)
	for _, p := range k.Positions {
		c.place(p.Planet, signOf(p))
	}
	return c
}

// chalit keeps the rasi house signs but assigns planets to equal bhavas whose
// midpoints sit at the ascendant degree plus multiples of 30°.
func (k *Kundli) chalit() Chart {
	c := emptyChart(Chalit, k.Lagna)
	for _, p := range k.Positions {
		h := BhavaOf(p.Longitude, k.Ascendant)
		c.Houses[h-1].Planets = append(c.Houses[h-1].Planets, p.Planet)
	}
	return c
}

// BhavaOf returns the 1-based bhava for a longitude given the ascendant.
func BhavaOf(longitude, ascendant float64) int {
	h := int(Normalize(longitude-ascendant+15)/30) + 1
	if h > 12 {
		h = 12
	}
	return h
}

// NavamsaSign maps a longitude to its D9 sign. Each sign holds nine padas of
// 3°20'; counting padas continuously from 0° Aries and taking them modulo 12
// yields the movable/fixed/dual starting rules.
func NavamsaSign(longitude float64) Sign {
	n := int(math.Floor(Normalize(longitude) * 3 / 10))
	if n > 107 {
		n = 107
	}
	return Sign(n%12 + 1)
}

// HoraSign maps a longitude to its D2 sign: the Sun's hora is Leo and the
// Moon's is Cancer. Odd signs begin with the Sun's hora, even signs with the
// Moon's.
func HoraSign(longitude float64) Sign {
	firstHalf := DegreeInSign(longitude) < 15
	if SignOf(longitude).Odd() == firstHalf {
		return Leo
	}
	return Cancer
}
