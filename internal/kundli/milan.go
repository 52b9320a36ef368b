package kundli

import "math"

// Koota is one of the eight Ashtakoota factors.
type Koota struct {
	Name   string  `json:"name" yaml:"name"`
	Score  float64 `json:"score" yaml:"score"`
	Max    float64 `json:"max" yaml:"max"`
	Detail string  `json:"detail" yaml:"detail"`
}

// Compatibility is the Guna Milan result for a pair of charts.
type Compatibility struct {
	Kootas       []Koota `json:"kootas" yaml:"kootas"`
	Total        float64 `json:"total" yaml:"total"`
	Max          float64 `json:"max" yaml:"max"`
	Verdict      string  `json:"verdict" yaml:"verdict"`
	NadiDosha    bool    `json:"nadi_dosha" yaml:"nadi_dosha"`
	BhakootDosha bool    `json:"bhakoot_dosha" yaml:"bhakoot_dosha"`
}

// Gana temperament classes.
const (
	Deva     = "Deva"
	Manushya = "Manushya"
	Rakshasa = "Rakshasa"
)

var ganaOf = [27]string{
	Deva, Manushya, Rakshasa, Manushya, Deva, Manushya, Deva, Deva, Rakshasa,
	Rakshasa, Manushya, Manushya, Deva, Rakshasa, Deva, Rakshasa, Deva, Rakshasa,
	Rakshasa, Manushya, Manushya, Deva, Rakshasa, Rakshasa, Manushya, Manushya, Deva,
}

var nadiCycle = [6]string{"Aadi", "Madhya", "Antya", "Antya", "Madhya", "Aadi"}

var yoniOf = [27]string{
	"Horse", "Elephant", "Sheep", "Serpent", "Serpent", "Dog", "Cat", "Sheep", "Cat",
	"Rat", "Rat", "Cow", "Buffalo", "Tiger", "Buffalo", "Tiger", "Deer", "Deer",
	"Dog", "Monkey", "Mongoose", "Monkey", "Lion", "Horse", "Lion", "Cow", "Elephant",
}

var yoniEnemies = map[string]string{
	"Cow": "Tiger", "Tiger": "Cow",
	"Elephant": "Lion", "Lion": "Elephant",
	"Horse": "Buffalo", "Buffalo": "Horse",
	"Dog": "Deer", "Deer": "Dog",
	"Serpent": "Mongoose", "Mongoose": "Serpent",
	"Monkey": "Sheep", "Sheep": "Monkey",
	"Cat": "Rat", "Rat": "Cat",
}

// varna rank by Moon sign: 4 Brahmin, 3 Kshatriya, 2 Vaishya, 1 Shudra.
var varnaRank = [...]int{0, 3, 2, 1, 4, 3, 2, 1, 4, 3, 2, 1, 4}
var varnaNames = [...]string{"", "Shudra", "Vaishya", "Kshatriya", "Brahmin"}

const (
	quadruped = "Chatushpada"
	human     = "Manava"
	water     = "Jalachara"
	wild      = "Vanachara"
	insect    = "Keeta"
)

var vashyaOf = [...]string{"", quadruped, quadruped, human, water, wild, human,
	human, insect, human, water, human, water}

// friendship of the natural planetary relationships: 1 friend, 0 neutral, -1 enemy.
var friendship = map[Planet]map[Planet]int{
	Sun:     {Moon: 1, Mars: 1, Jupiter: 1, Mercury: 0, Venus: -1, Saturn: -1},
	Moon:    {Sun: 1, Mercury: 1, Mars: 0, Jupiter: 0, Venus: 0, Saturn: 0},
	Mars:    {Sun: 1, Moon: 1, Jupiter: 1, Venus: 0, Saturn: 0, Mercury: -1},
	Mercury: {Sun: 1, Venus: 1, Mars: 0, Jupiter: 0, Saturn: 0, Moon: -1},
	Jupiter: {Sun: 1, Moon: 1, Mars: 1, Saturn: 0, Mercury: -1, Venus: -1},
	Venus:   {Mercury: 1, Saturn: 1, Mars: 0, Jupiter: 0, Sun: -1, Moon: -1},
	Saturn:  {Mercury: 1, Venus: 1, Jupiter: 0, Sun: -1, Moon: -1, Mars: -1},
}

// GunaMilan scores the traditional 36-point match between the groom's and
// the bride's charts. Varna and Tara are directional, so argument order matters.
func GunaMilan(groom, bride *Kundli) Compatibility {
	gs, bs := groom.MoonSign, bride.MoonSign
	gn, bn := groom.MoonNakshatra(), bride.MoonNakshatra()

	kootas := []Koota{
		varnaKoota(gs, bs),
		vashyaKoota(gs, bs),
		taraKoota(gn, bn),
		yoniKoota(gn, bn),
		maitriKoota(gs, bs),
		ganaKoota(gn, bn),
		bhakootKoota(gs, bs),
		nadiKoota(gn, bn),
	}
	c := Compatibility{Kootas: kootas, Max: 36}
	for _, k := range kootas {
		c.Total += k.Score
	}
	c.Total = math.Round(c.Total*10) / 10
	c.NadiDosha = kootas[7].Score == 0
	c.BhakootDosha = kootas[6].Score == 0
	c.Verdict = Verdict(c.Total)
	return c
}

// Verdict buckets a Guna Milan total.
func Verdict(total float64) string {
	switch {
	case total > 32:
		return "excellent"
	case total >= 25:
		return "good"
	case total >= 18:
		return "average"
	default:
		return "not recommended"
	}
}

func varnaKoota(g, b Sign) Koota {
	k := Koota{Name: "Varna", Max: 1, Detail: varnaNames[varnaRank[g]] + " / " + varnaNames[varnaRank[b]]}
	if varnaRank[g] >= varnaRank[b] {
		k.Score = 1
	}
	return k
}

func vashyaKoota(g, b Sign) Koota {
	gv, bv := vashyaOf[g], vashyaOf[b]
	k := Koota{Name: "Vashya", Max: 2, Detail: gv + " / " + bv}
	switch {
	case gv == bv:
		k.Score = 2
	case gv == wild || bv == wild:
		k.Score = 0
	case gv == insect || bv == insect:
		k.Score = 0.5
	default:
		k.Score = 1
	}
	return k
}

// taraGood reports whether the count from one nakshatra to another avoids
// the inauspicious 3rd, 5th and 7th taras.
func taraGood(from, to int) bool {
	n := ((to-from)%27+27)%27 + 1
	switch n % 9 {
	case 3, 5, 7:
		return false
	}
	return true
}

func taraKoota(g, b int) Koota {
	k := Koota{Name: "Tara", Max: 3, Detail: NakshatraName(g) + " / " + NakshatraName(b)}
	good := 0
	if taraGood(b, g) {
		good++
	}
	if taraGood(g, b) {
		good++
	}
	k.Score = float64(good) * 1.5
	return k
}

func yoniKoota(g, b int) Koota {
	gy, by := yoniOf[g], yoniOf[b]
	k := Koota{Name: "Yoni", Max: 4, Detail: gy + " / " + by}
	switch {
	case gy == by:
		k.Score = 4
	case yoniEnemies[gy] == by:
		k.Score = 0
	default:
		k.Score = 2
	}
	return k
}

func maitriKoota(g, b Sign) Koota {
	gl, bl := g.Lord(), b.Lord()
	k := Koota{Name: "Graha Maitri", Max: 5, Detail: string(gl) + " / " + string(bl)}
	if gl == bl {
		k.Score = 5
		return k
	}
	switch friendship[gl][bl] + friendship[bl][gl] {
	case 2:
		k.Score = 5
	case 1:
		k.Score = 4
	case 0:
		// friend+enemy and neutral+neutral both sum to zero
		if friendship[gl][bl] == 0 {
			k.Score = 3
		} else {
			k.Score = 1
		}
	case -1:
		k.Score = 0.5
	default:
		k.Score = 0
	}
	return k
}

func ganaKoota(g, b int) Koota {
	gg, bg := ganaOf[g], ganaOf[b]
	k := Koota{Name: "Gana", Max: 6, Detail: gg + " / " + bg}
	switch {
	case gg == bg:
		k.Score = 6
	case (gg == Deva && bg == Manushya) || (gg == Manushya && bg == Deva):
		k.Score = 5
	case (gg == Deva && bg == Rakshasa) || (gg == Rakshasa && bg == Deva):
		k.Score = 1
	default:
		k.Score = 0
	}
	return k
}

func bhakootKoota(g, b Sign) Koota {
	d := b.Distance(g)
	k := Koota{Name: "Bhakoot", Max: 7, Detail: g.String() + " / " + b.String()}
	switch d {
	case 2, 12, 5, 9, 6, 8:
		k.Score = 0
	default:
		k.Score = 7
	}
	return k
}

func nadiKoota(g, b int) Koota {
	gn, bn := nadiCycle[g%6], nadiCycle[b%6]
	k := Koota{Name: "Nadi", Max: 8, Detail: gn + " / " + bn}
	if gn != bn {
		k.Score = 8
	}
	return k
}
