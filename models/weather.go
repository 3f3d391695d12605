package models

import (
	"fmt"
	"strconv"
)

// Coordinates is a latitude/longitude pair in decimal degrees
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// String formats coordinates the way they are sent to the provider
func (c Coordinates) String() string {
	return fmt.Sprintf("%s,%s", formatDegrees(c.Latitude), formatDegrees(c.Longitude))
}

func formatDegrees(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Location selects a place either by city name or by coordinates.
// When both are set the coordinates win.
type Location struct {
	Name        string       `json:"name,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

// ByName builds a name-based location selector
func ByName(name string) Location {
	return Location{Name: name}
}

// ByCoordinates builds a coordinate-based location selector
func ByCoordinates(c Coordinates) Location {
	return Location{Coordinates: &c}
}

// String returns a human readable form used in logs and cache keys
func (l Location) String() string {
	if l.Coordinates != nil {
		return l.Coordinates.String()
	}
	return l.Name
}

// CurrentConditions represents the current weather reported for a city.
// Temperatures are stored in Celsius exactly as the provider returns them.
type CurrentConditions struct {
	CityName              string      `json:"cityName"`
	CountryCode           string      `json:"countryCode,omitempty"`
	TimezoneOffsetSeconds int         `json:"timezoneOffsetSeconds"`
	Temperature           float64     `json:"temperature"` // in Celsius
	FeelsLike             float64     `json:"feelsLike"`   // in Celsius
	HumidityPercent       int         `json:"humidityPercent"`
	WindSpeed             float64     `json:"windSpeed"` // in m/s
	PressureHPa           int         `json:"pressureHPa"`
	ConditionCode         int         `json:"conditionCode"`
	ConditionDescription  string      `json:"conditionDescription"`
	Icon                  string      `json:"icon,omitempty"`
	Coordinates           Coordinates `json:"coordinates"`
}
