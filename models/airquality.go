package models

import "time"

// AirQualitySample is one air-pollution reading or forecast point.
// AQI is the provider's 1 (good) to 5 (very poor) ordinal.
type AirQualitySample struct {
	Timestamp time.Time `json:"timestamp"` // UTC
	AQI       int       `json:"aqi"`
}
