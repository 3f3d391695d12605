package models

import (
	"time"
)

// ForecastSample is a single 3-hour forecast entry
type ForecastSample struct {
	Timestamp            time.Time `json:"timestamp"`   // UTC
	Temperature          float64   `json:"temperature"` // in Celsius
	TempMax              float64   `json:"tempMax"`
	TempMin              float64   `json:"tempMin"`
	FeelsLike            float64   `json:"feelsLike"`
	HumidityPercent      int       `json:"humidityPercent"`
	PressureHPa          int       `json:"pressureHPa"`
	WindSpeed            float64   `json:"windSpeed"` // in m/s
	CloudsPercent        int       `json:"cloudsPercent"`
	ConditionCode        int       `json:"conditionCode"`
	ConditionDescription string    `json:"conditionDescription"`
	Icon                 string    `json:"icon,omitempty"`
}

// ForecastDay is one display record of the daily forecast. It is derived
// from the forecast list and never fetched directly.
type ForecastDay struct {
	DayLabel        string         `json:"dayLabel"`
	Date            time.Time      `json:"date"`
	Sample          ForecastSample `json:"sample"`
	AirQualityIndex *int           `json:"airQualityIndex"`
}
