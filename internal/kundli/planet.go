package kundli

// Planet names one of the nine grahas.
type Planet string

const (
	Sun     Planet = "Sun"
	Moon    Planet = "Moon"
	Mars    Planet = "Mars"
	Mercury Planet = "Mercury"
	Jupiter Planet = "Jupiter"
	Venus   Planet = "Venus"
	Saturn  Planet = "Saturn"
	Rahu    Planet = "Rahu"
	Ketu    Planet = "Ketu"
)

// Planets lists the grahas in traditional weekday order followed by the nodes.
var Planets = []Planet{Sun, Moon, Mars, Mercury, Jupiter, Venus, Saturn, Rahu, Ketu}

var nakshatraNames = [27]string{
	"Ashwini", "Bharani", "Krittika", "Rohini", "Mrigashira", "Ardra", "Punarvasu",
	"Pushya", "Ashlesha", "Magha", "Purva Phalguni", "Uttara Phalguni", "Hasta",
	"Chitra", "Swati", "Vishakha", "Anuradha", "Jyeshtha", "Mula", "Purva Ashadha",
	"Uttara Ashadha", "Shravana", "Dhanishta", "Shatabhisha", "Purva Bhadrapada",
	"Uttara Bhadrapada", "Revati",
}

const nakshatraSpan = 360.0 / 27

// Position is a planet's placement in the sidereal zodiac.
type Position struct {
	Planet     Planet  `json:"planet" yaml:"planet"`
	Longitude  float64 `json:"longitude" yaml:"longitude"`
	Sign       Sign    `json:"sign" yaml:"sign"`
	Degree     float64 `json:"degree" yaml:"degree"`
	Nakshatra  string  `json:"nakshatra" yaml:"nakshatra"`
	Pada       int     `json:"pada" yaml:"pada"`
	Retrograde bool    `json:"retrograde" yaml:"retrograde"`
}

// NakshatraIndex returns the 0-based lunar mansion containing a longitude.
func NakshatraIndex(longitude float64) int {
	i := int(Normalize(longitude) / nakshatraSpan)
	if i > 26 {
		i = 26
	}
	return i
}

// NakshatraName returns the name of the i-th lunar mansion.
func NakshatraName(i int) string { return nakshatraNames[((i%27)+27)%27] }

// Pada returns the quarter (1-4) of the nakshatra a longitude falls in.
func Pada(longitude float64) int {
	rem := Normalize(longitude) - float64(NakshatraIndex(longitude))*nakshatraSpan
	p := int(rem/(nakshatraSpan/4)) + 1
	if p > 4 {
		p = 4
	}
	return p
}

func newPosition(p Planet, longitude float64, retro bool) Position {
	lon := Normalize(longitude)
	return Position{
		Planet:     p,
		Longitude:  trunc2(lon),
		Sign:       SignOf(lon),
		Degree:     trunc2(DegreeInSign(lon)),
		Nakshatra:  NakshatraName(NakshatraIndex(lon)),
		Pada:       Pada(lon),
		Retrograde: retro,
	}
}
