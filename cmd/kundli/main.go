// Command kundli casts charts and scores matches from the command line,
// printing the result as YAML.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"jotshi_backend/internal/kundli"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "kundli",
		Short:         "Cast Vedic birth charts and Guna Milan scores",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newChartCmd(), newMatchCmd())
	return root
}

func newChartCmd() *cobra.Command {
	var (
		name, date, clock, place, kind string
		tz, lat, lon                   float64
	)
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Print a Kundli, or one divisional chart with --kind",
		Example: `  kundli chart --date 1992-03-04 --time 21:15 --lat 19.076 --lon 72.8777
  kundli chart --date 1992-03-04 --time 21:15 --kind d9`,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := kundli.ParseBirthDetails(date, clock, tz, lat, lon)
			if err != nil {
				return err
			}
			b.Name, b.Place = name, place
			k := kundli.New(b)
			if kind == "" {
				return writeYAML(cmd, struct {
					Kundli *kundli.Kundli                      `yaml:"kundli"`
					Charts map[kundli.ChartKind]kundli.Chart `yaml:"charts"`
				}{k, k.Charts()})
			}
			ck, err := kundli.ParseChartKind(kind)
			if err != nil {
				return err
			}
			chart, err := k.Chart(ck)
			if err != nil {
				return err
			}
			return writeYAML(cmd, chart)
		},
	}
	f := cmd.Flags()
	f.StringVar(&name, "name", "", "person's name")
	f.StringVar(&date, "date", "", "birth date, YYYY-MM-DD")
	f.StringVar(&clock, "time", "12:00", "birth time, HH:MM local")
	f.Float64Var(&tz, "tz", 5.5, "UTC offset in hours")
	f.Float64Var(&lat, "lat", 28.6139, "birth latitude")
	f.Float64Var(&lon, "lon", 77.209, "birth longitude")
	f.StringVar(&place, "place", "", "birth place label")
	f.StringVar(&kind, "kind", "", "chart kind: rasi, navamsa, hora, chandra, chalit")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}

func newMatchCmd() *cobra.Command {
	var groom, bride string
	var tz float64
	cmd := &cobra.Command{
		Use:     "match",
		Short:   "Score two charts with Ashtakoota Guna Milan",
		Example: `  kundli match --groom 1990-07-21,06:40,28.61,77.21 --bride 1992-03-04,21:15,19.08,72.88`,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := parsePerson(groom, tz)
			if err != nil {
				return fmt.Errorf("groom: %w", err)
			}
			b, err := parsePerson(bride, tz)
			if err != nil {
				return fmt.Errorf("bride: %w", err)
			}
			return writeYAML(cmd, kundli.GunaMilan(kundli.New(g), kundli.New(b)))
		},
	}
	f := cmd.Flags()
	f.StringVar(&groom, "groom", "", "DATE,TIME,LAT,LON")
	f.StringVar(&bride, "bride", "", "DATE,TIME,LAT,LON")
	f.Float64Var(&tz, "tz", 5.5, "UTC offset in hours for both")
	_ = cmd.MarkFlagRequired("groom")
	_ = cmd.MarkFlagRequired("bride")
	return cmd
}

// parsePerson reads "DATE,TIME,LAT,LON".
func parsePerson(s string, tz float64) (kundli.BirthDetails, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return kundli.BirthDetails{}, fmt.Errorf("want DATE,TIME,LAT,LON, got %q", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
	if err != nil {
		return kundli.BirthDetails{}, fmt.Errorf("latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
	if err != nil {
		return kundli.BirthDetails{}, fmt.Errorf("longitude: %w", err)
	}
	return kundli.ParseBirthDetails(strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), tz, lat, lon)
}

func writeYAML(cmd *cobra.Command, v any) error {
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
