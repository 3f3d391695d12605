// Package units holds the pure conversion and formatting helpers used at
// render time. Nothing here mutates stored provider values.
package units

import (
	"math"
	"time"

	"city-weather/models"
)

// ConvertTemperature converts a Celsius value to the display unit and
// rounds it to a whole degree. Halves round up, so -0.5 becomes 0.
func ConvertTemperature(celsius float64, unit models.TemperatureUnit) int {
	v := celsius
	if unit == models.Fahrenheit {
		v = celsius*9/5 + 32
	}
	return int(math.Floor(v + 0.5))
}

// TemperatureUnitSymbol returns "°C" or "°F"
func TemperatureUnitSymbol(unit models.TemperatureUnit) string {
	if unit == models.Fahrenheit {
		return "°F"
	}
	return "°C"
}

// AirQuality describes an AQI value for display
type AirQuality struct {
	Label        string `json:"label"`
	SeverityRank int    `json:"severityRank"`
}

// NotAvailable is returned for missing or out-of-range AQI values
var NotAvailable = AirQuality{Label: "N/A", SeverityRank: 0}

var airQualityLevels = [...]string{"Good", "Fair", "Moderate", "Poor", "Very Poor"}

// AirQualityLevel maps the provider's 1-5 ordinal to a label. Anything
// outside that range maps to NotAvailable.
func AirQualityLevel(aqi int) AirQuality {
	if aqi < 1 || aqi > len(airQualityLevels) {
		return NotAvailable
	}
	return AirQuality{Label: airQualityLevels[aqi-1], SeverityRank: aqi}
}

// AirQualityLevelOf is AirQualityLevel for an optional value
func AirQualityLevelOf(aqi *int) AirQuality {
	if aqi == nil {
		return NotAvailable
	}
	return AirQualityLevel(*aqi)
}

// LocalTimeFromOffset returns the wall-clock time at a location whose UTC
// offset is offsetSeconds, at the instant ref.
func LocalTimeFromOffset(offsetSeconds int, ref time.Time) time.Time {
	return ref.UTC().In(time.FixedZone("", offsetSeconds))
}
