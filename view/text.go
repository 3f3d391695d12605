package view

import (
	"fmt"
	"strings"
)

// Text renders the city page for a terminal
func (p CityPage) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", p.City)
	if p.Date != "" {
		fmt.Fprintf(&b, "%s\nLocal Time: %s\n", p.Date, p.LocalTime)
	}
	b.WriteString("\n")

	c := p.Current
	fmt.Fprintf(&b, "%s  %s\n", c.Temperature, c.Description)
	fmt.Fprintf(&b, "  %-12s %s\n", "Feels like", c.FeelsLike)
	fmt.Fprintf(&b, "  %-12s %s\n", "Humidity", c.Humidity)
	fmt.Fprintf(&b, "  %-12s %s\n", "Wind Speed", c.Wind)
	fmt.Fprintf(&b, "  %-12s %s\n", "Pressure", c.Pressure)
	fmt.Fprintf(&b, "  %-12s %s\n", "Air Quality", c.AirQuality)

	if len(p.Days) > 0 {
		b.WriteString("\nDaily Forecast\n")
	}
	for _, d := range p.Days {
		marker := "+"
		if d.Expanded {
			marker = "-"
		}
		fmt.Fprintf(&b, "%s %d %-10s %-14s %s\n", marker, d.Index, d.Label, d.HighLow, d.Description)
		if d.Details != nil {
			fmt.Fprintf(&b, "    Pressure: %s  Humidity: %s  Clouds: %s\n", d.Details.Pressure, d.Details.Humidity, d.Details.Clouds)
			fmt.Fprintf(&b, "    Wind: %s  Air Quality: %s  Feels like: %s\n", d.Details.Wind, d.Details.AirQuality, d.Details.FeelsLike)
		}
	}
	return b.String()
}

// Text renders the error page for a terminal
func (p ErrorPage) Text() string {
	return fmt.Sprintf("%s\n%s\n(%s: home)\n", p.Title, p.Message, p.Action)
}

// Text renders the search page for a terminal
func (p SearchPage) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", p.Title)
	if p.Query != "" {
		fmt.Fprintf(&b, "Search: %s\n", p.Query)
	}
	for i, o := range p.Options {
		fmt.Fprintf(&b, "  #%d %s\n", i+1, o.Label)
	}
	if p.Query != "" && len(p.Options) == 0 {
		b.WriteString("  (no results)\n")
	}
	fmt.Fprintf(&b, "[%s: locate <lat> <lon>]\n", p.LocationAction)
	if p.LocationError != "" {
		fmt.Fprintf(&b, "%s\n", p.LocationError)
	}
	return b.String()
}
