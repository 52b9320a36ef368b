package astro

import (
	"context"
	"fmt"
	"strings"
	"time"

	"jotshi_backend/internal/kundli"
	"jotshi_backend/internal/prompts"
	"jotshi_backend/internal/utils"

	"github.com/sirupsen/logrus"
)

// PanchangTTL is how long a day's Panchang stays cached.
const PanchangTTL = 24 * time.Hour

// Panchang is the Hindu almanac for one day and place.
type Panchang struct {
	Date           string   `json:"date"`
	Place          string   `json:"place"`
	Tithi          string   `json:"tithi"`
	Nakshatra      string   `json:"nakshatra"`
	Yoga           string   `json:"yoga"`
	Karana         string   `json:"karana"`
	Vara           string   `json:"vara"`
	Sunrise        string   `json:"sunrise"`
	Sunset         string   `json:"sunset"`
	RahuKaal       string   `json:"rahu_kaal"`
	AuspiciousTime string   `json:"auspicious_time"`
	Festivals      []string `json:"festivals"`
	Fallback       bool     `json:"fallback"`
}

var varaNames = [7]string{"Ravivara", "Somavara", "Mangalavara", "Budhavara", "Guruvara", "Shukravara", "Shanivara"}

// Rahu kaal segment (1-8 of the 06:00-18:00 day) per weekday, Sunday first.
var rahuSegment = [7]int{8, 2, 7, 5, 6, 4, 3}

var tithiNames = [15]string{"Pratipada", "Dwitiya", "Tritiya", "Chaturthi", "Panchami", "Shashthi",
	"Saptami", "Ashtami", "Navami", "Dashami", "Ekadashi", "Dwadashi", "Trayodashi", "Chaturdashi", "Purnima"}

var yogaNames = [27]string{"Vishkambha", "Priti", "Ayushman", "Saubhagya", "Shobhana", "Atiganda",
	"Sukarma", "Dhriti", "Shula", "Ganda", "Vriddhi", "Dhruva", "Vyaghata", "Harshana", "Vajra",
	"Siddhi", "Vyatipata", "Variyana", "Parigha", "Shiva", "Siddha", "Sadhya", "Shubha", "Shukla",
	"Brahma", "Indra", "Vaidhriti"}

var karanaNames = [7]string{"Bava", "Balava", "Kaulava", "Taitila", "Gara", "Vanija", "Vishti"}

func panchangKey(date time.Time, place string) string {
	return "panchang:" + date.Format("2006-01-02") + ":" + strings.ToLower(strings.TrimSpace(place))
}

// Panchang returns the almanac for date and place, reading through the cache.
// Concurrent misses for the same key share one model call.
func (s *Service) Panchang(ctx context.Context, date time.Time, place string) (Panchang, bool, error) {
	if strings.TrimSpace(place) == "" {
		place = "New Delhi"
	}
	key := panchangKey(date, place)
	var cached Panchang
	if s.rdb != nil {
		if found, err := utils.GetCache(ctx, s.rdb, key, &cached); err == nil && found {
			return cached, true, nil
		}
	}
	// The shared fetch outlives any one caller hanging up
	shared := context.WithoutCancel(ctx)
	v, err, _ := s.group.Do(key, func() (any, error) {
		return s.fetchPanchang(shared, key, date, place)
	})
	if err != nil {
		return Panchang{}, false, err
	}
	return v.(Panchang), false, nil
}

func (s *Service) fetchPanchang(ctx context.Context, key string, date time.Time, place string) (Panchang, error) {
	day := date.Format("2006-01-02")
	var out Panchang
	ok, err := s.ask(ctx, prompts.Panchang, map[string]string{"Date": day, "Place": place}, &out)
	if err != nil {
		return Panchang{}, err
	}
	if !ok || out.Tithi == "" {
		return FallbackPanchang(date, place), nil
	}
	out.Date, out.Place = day, place
	if out.Festivals == nil {
		out.Festivals = []string{}
	}
	if s.rdb != nil {
		if err := utils.SetCache(ctx, s.rdb, key, out, PanchangTTL); err != nil {
			logrus.WithField("error", err.Error()).Warn("Failed to cache panchang")
		}
	}
	return out, nil
}

// FallbackPanchang derives an approximate almanac from the placeholder
// positions at local noon. Fallbacks are not cached.
func FallbackPanchang(date time.Time, place string) Panchang {
	noon := time.Date(date.Year(), date.Month(), date.Day(), 12, 0, 0, 0, date.Location())
	var sun, moon float64
	for _, p := range kundli.SamplePositions(kundli.BirthDetails{DateTime: noon}) {
		switch p.Planet {
		case kundli.Sun:
			sun = p.Longitude
		case kundli.Moon:
			moon = p.Longitude
		}
	}
	elong := kundli.Normalize(moon - sun)
	tithi := int(elong / 12) // 0..29
	paksha := "Shukla"
	if tithi >= 15 {
		paksha = "Krishna"
	}
	tithiName := tithiNames[tithi%15]
	if tithi == 29 {
		tithiName = "Amavasya"
	}
	wd := int(noon.Weekday())
	seg := rahuSegment[wd]
	start := 6*60 + (seg-1)*90
	return Panchang{
		Date:           noon.Format("2006-01-02"),
		Place:          place,
		Tithi:          paksha + " " + tithiName,
		Nakshatra:      kundli.NakshatraName(kundli.NakshatraIndex(moon)),
		Yoga:           yogaNames[kundli.NakshatraIndex(sun+moon)],
		Karana:         karanaNames[int(elong/6)%7],
		Vara:           varaNames[wd],
		Sunrise:        "06:00",
		Sunset:         "18:00",
		RahuKaal:       fmt.Sprintf("%s - %s", clock(start), clock(start+90)),
		AuspiciousTime: "11:45 - 12:30",
		Festivals:      []string{},
		Fallback:       true,
	}
}

func clock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
