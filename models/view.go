package models

import (
	"fmt"
	"strings"
)

// TemperatureUnit selects how temperatures are displayed
type TemperatureUnit int

const (
	Celsius TemperatureUnit = iota
	Fahrenheit
)

// String returns the unit name
func (u TemperatureUnit) String() string {
	if u == Fahrenheit {
		return "fahrenheit"
	}
	return "celsius"
}

// MarshalText encodes the unit as its name
func (u TemperatureUnit) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

// UnmarshalText accepts the unit name or its first letter
func (u *TemperatureUnit) UnmarshalText(text []byte) error {
	parsed, err := ParseTemperatureUnit(string(text))
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

// ParseTemperatureUnit parses "c", "celsius", "f" or "fahrenheit" (any case)
func ParseTemperatureUnit(s string) (TemperatureUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "c", "celsius", "metric":
		return Celsius, nil
	case "f", "fahrenheit", "imperial":
		return Fahrenheit, nil
	default:
		return Celsius, fmt.Errorf("unknown temperature unit %q", s)
	}
}

// CityViewModel is the render-ready aggregate for one city. It is replaced
// wholesale on every city change.
type CityViewModel struct {
	Current      CurrentConditions `json:"current"`
	ForecastDays []ForecastDay     `json:"forecastDays"`

	// AirQuality is the current reading; nil when the provider call failed
	AirQuality      *AirQualitySample `json:"airQuality"`
	TemperatureUnit TemperatureUnit   `json:"temperatureUnit"`
}
