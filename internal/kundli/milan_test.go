package kundli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func moonChart(sign Sign, nakshatra int) *Kundli {
	return &Kundli{MoonSign: sign, moonNakshatra: nakshatra}
}

func TestGunaMilan_SameChart(t *testing.T) {
	k := moonChart(Aries, 0)
	c := GunaMilan(k, k)

	assert.Equal(t, 36.0, c.Max)
	assert.Equal(t, 28.0, c.Total)
	assert.True(t, c.NadiDosha)
	assert.False(t, c.BhakootDosha)
	assert.Equal(t, "good", c.Verdict)
}

func TestGunaMilan_Kootas(t *testing.T) {
	groom := moonChart(Taurus, 3) // Rohini
	bride := moonChart(Virgo, 12) // Hasta
	c := GunaMilan(groom, bride)

	require.Len(t, c.Kootas, 8)
	want := map[string]float64{
		"Varna": 1, "Vashya": 1, "Tara": 3, "Yoni": 2,
		"Graha Maitri": 5, "Gana": 5, "Bhakoot": 0, "Nadi": 8,
	}
	var max float64
	for _, k := range c.Kootas {
		assert.Equal(t, want[k.Name], k.Score, k.Name)
		assert.LessOrEqual(t, k.Score, k.Max, k.Name)
		max += k.Max
	}
	assert.Equal(t, 36.0, max)
	assert.Equal(t, 25.0, c.Total)
	assert.True(t, c.BhakootDosha)
	assert.False(t, c.NadiDosha)
	assert.Equal(t, "good", c.Verdict)
}

func TestGunaMilan_YoniEnemies(t *testing.T) {
	// Uttara Phalguni (Cow) against Chitra (Tiger)
	k := yoniKoota(11, 13)
	assert.Equal(t, 0.0, k.Score)
	assert.Equal(t, "Cow / Tiger", k.Detail)
}

func TestVerdict(t *testing.T) {
	assert.Equal(t, "not recommended", Verdict(17.5))
	assert.Equal(t, "average", Verdict(18))
	assert.Equal(t, "good", Verdict(25))
	assert.Equal(t, "good", Verdict(32))
	assert.Equal(t, "excellent", Verdict(33))
}
