package kundli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleBirth(t *testing.T) BirthDetails {
	t.Helper()
	b, err := ParseBirthDetails("1990-08-15", "06:30", 5.5, 28.6139, 77.2090)
	require.NoError(t, err)
	return b
}

func TestSign_Arithmetic(t *testing.T) {
	assert.Equal(t, Taurus, Aries.Add(1))
	assert.Equal(t, Aries, Pisces.Add(1))
	assert.Equal(t, Pisces, Aries.Add(-1))
	assert.Equal(t, Aries, Aries.Add(24))
	assert.Equal(t, 1, Leo.Distance(Leo))
	assert.Equal(t, 12, Aries.Distance(Pisces))
	assert.Equal(t, 2, Pisces.Distance(Aries))
	assert.Equal(t, Mars, Scorpio.Lord())
	assert.True(t, Gemini.Odd())
	assert.False(t, Cancer.Odd())

	s, err := ParseSign("sagittarius")
	require.NoError(t, err)
	assert.Equal(t, Sagittarius, s)
	_, err = ParseSign("Ophiuchus")
	assert.Error(t, err)
}

func TestSignOf_Normalizes(t *testing.T) {
	assert.Equal(t, Aries, SignOf(0))
	assert.Equal(t, Pisces, SignOf(-0.5))
	assert.Equal(t, Taurus, SignOf(390))
	assert.InDelta(t, 10.0, DegreeInSign(370), 1e-9)
}

func TestNavamsaSign(t *testing.T) {
	tests := []struct {
		lon  float64
		want Sign
	}{
		{0, Aries},          // movable sign starts from itself
		{29.9, Sagittarius}, // ninth pada of Aries
		{30, Capricorn},     // fixed sign starts from the 9th
		{35, Aquarius},
		{65, Scorpio}, // dual sign starts from the 5th
		{359.99, Pisces},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NavamsaSign(tt.lon), "lon=%v", tt.lon)
	}
}

func TestHoraSign(t *testing.T) {
	assert.Equal(t, Leo, HoraSign(10))    // odd sign, first half
	assert.Equal(t, Cancer, HoraSign(20)) // odd sign, second half
	assert.Equal(t, Cancer, HoraSign(40)) // even sign, first half
	assert.Equal(t, Leo, HoraSign(50))    // even sign, second half
}

func TestBhavaOf(t *testing.T) {
	assert.Equal(t, 1, BhavaOf(100, 100))
	assert.Equal(t, 1, BhavaOf(114.9, 100))
	assert.Equal(t, 2, BhavaOf(115.1, 100))
	assert.Equal(t, 1, BhavaOf(85.1, 100))
	assert.Equal(t, 12, BhavaOf(84.9, 100))
	assert.Equal(t, 7, BhavaOf(280, 100))
}

func TestParseBirthDetails(t *testing.T) {
	b := sampleBirth(t)
	assert.True(t, time.Date(1990, 8, 15, 1, 0, 0, 0, time.UTC).Equal(b.DateTime))

	_, err := ParseBirthDetails("1990-13-40", "06:30", 0, 0, 0)
	assert.Error(t, err)
	_, err = ParseBirthDetails("1990-08-15", "06:30", 0, 95, 0)
	assert.Error(t, err)
	_, err = ParseBirthDetails("1990-08-15", "06:30", 20, 0, 0)
	assert.Error(t, err)

	noon, err := ParseBirthDetails("1990-08-15", "", 0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 12, noon.DateTime.Hour())
}

func TestNew_Deterministic(t *testing.T) {
	a := New(sampleBirth(t))
	b := New(sampleBirth(t))
	assert.Equal(t, a.Positions, b.Positions)
	assert.Equal(t, a.Lagna, b.Lagna)
	require.Len(t, a.Positions, len(Planets))

	for _, p := range a.Positions {
		assert.True(t, p.Sign.Valid(), p.Planet)
		assert.GreaterOrEqual(t, p.Longitude, 0.0)
		assert.Less(t, p.Longitude, 360.0)
		assert.Less(t, p.Degree, 30.0)
		assert.GreaterOrEqual(t, p.Pada, 1)
		assert.LessOrEqual(t, p.Pada, 4)
	}
	rahu, ketu := a.Position(Rahu), a.Position(Ketu)
	assert.InDelta(t, 180, Normalize(ketu.Longitude-rahu.Longitude), 0.02)
	assert.True(t, rahu.Retrograde)
	assert.Equal(t, a.Position(Moon).Sign, a.MoonSign)
	assert.Contains(t, a.Summary(), "Lagna: "+a.Lagna.String())
}

func TestSamplePositions_SunSignIsPlausible(t *testing.T) {
	b, err := ParseBirthDetails("2000-04-25", "12:00", 0, 0, 0)
	require.NoError(t, err)
	k := New(b)
	assert.Equal(t, Aries, k.SunSign)
}

func TestCharts_HoldEveryPlanetOnce(t *testing.T) {
	k := New(sampleBirth(t))
	for kind, c := range k.Charts() {
		t.Run(string(kind), func(t *testing.T) {
			seen := map[Planet]int{}
			for i, h := range c.Houses {
				assert.Equal(t, i+1, h.Number)
				assert.Equal(t, c.Lagna.Add(i), h.Sign)
				for _, p := range h.Planets {
					seen[p]++
				}
			}
			for _, p := range Planets {
				assert.Equal(t, 1, seen[p], p)
			}
		})
	}
}

func TestChart_Transforms(t *testing.T) {
	k := New(sampleBirth(t))

	rasi, err := k.Chart(Rasi)
	require.NoError(t, err)
	assert.Equal(t, k.Lagna, rasi.Houses[0].Sign)
	assert.Equal(t, k.Lagna.Distance(k.MoonSign), rasi.HouseOf(Moon))

	chandra, err := k.Chart(Chandra)
	require.NoError(t, err)
	assert.Equal(t, k.MoonSign, chandra.Lagna)
	assert.Equal(t, 1, chandra.HouseOf(Moon))

	nav, err := k.Chart(Navamsa)
	require.NoError(t, err)
	assert.Equal(t, NavamsaSign(k.Ascendant), nav.Lagna)

	hora, err := k.Chart(Hora)
	require.NoError(t, err)
	for _, h := range hora.Houses {
		if len(h.Planets) > 0 {
			assert.Contains(t, []Sign{Leo, Cancer}, h.Sign)
		}
	}

	chalit, err := k.Chart(Chalit)
	require.NoError(t, err)
	assert.Equal(t, BhavaOf(k.Position(Sun).Longitude, k.Ascendant), chalit.HouseOf(Sun))

	_, err = k.Chart("d60")
	assert.Error(t, err)
}

func TestParseChartKind(t *testing.T) {
	for in, want := range map[string]ChartKind{"lagna": Rasi, "D9": Navamsa, "hora": Hora, "moon": Chandra, "bhava": Chalit} {
		got, err := ParseChartKind(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseChartKind("shashtiamsa")
	assert.Error(t, err)
}
