package models

import "fmt"

// CityCandidate is one match returned by a city search
type CityCandidate struct {
	Name        string  `json:"name"`
	CountryCode string  `json:"countryCode"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

// Label is the text shown for the candidate in a result list
func (c CityCandidate) Label() string {
	if c.CountryCode == "" {
		return c.Name
	}
	return fmt.Sprintf("%s, %s", c.Name, c.CountryCode)
}

// Value uniquely identifies the candidate within a result list
func (c CityCandidate) Value() string {
	return fmt.Sprintf("%s|%s|%s|%s", c.Name, c.CountryCode, formatDegrees(c.Latitude), formatDegrees(c.Longitude))
}

// Coordinates returns the candidate's embedded position
func (c CityCandidate) Coordinates() Coordinates {
	return Coordinates{Latitude: c.Latitude, Longitude: c.Longitude}
}
