package units

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"city-weather/models"
)

func TestConvertTemperature(t *testing.T) {
	tests := []struct {
		name     string
		celsius  float64
		unit     models.TemperatureUnit
		expected int
	}{
		{"freezing in fahrenheit", 0, models.Fahrenheit, 32},
		{"boiling in fahrenheit", 100, models.Fahrenheit, 212},
		{"celsius passthrough", 20, models.Celsius, 20},
		{"celsius rounds down", 20.4, models.Celsius, 20},
		{"celsius rounds half up", 20.5, models.Celsius, 21},
		{"negative half rounds toward zero", -0.5, models.Celsius, 0},
		{"below freezing in fahrenheit", -10, models.Fahrenheit, 14},
		{"body temperature in fahrenheit", 37, models.Fahrenheit, 99},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ConvertTemperature(tt.celsius, tt.unit))
		})
	}
}

func TestTemperatureUnitSymbol(t *testing.T) {
	assert.Equal(t, "°C", TemperatureUnitSymbol(models.Celsius))
	assert.Equal(t, "°F", TemperatureUnitSymbol(models.Fahrenheit))
}

func TestAirQualityLevel(t *testing.T) {
	expected := []string{"Good", "Fair", "Moderate", "Poor", "Very Poor"}
	seen := map[string]bool{}
	prev := 0

	for aqi := 1; aqi <= 5; aqi++ {
		level := AirQualityLevel(aqi)
		assert.Equal(t, expected[aqi-1], level.Label)
		assert.Greater(t, level.SeverityRank, prev, "severity must increase with aqi")
		assert.False(t, seen[level.Label], "labels must be distinct")
		seen[level.Label] = true
		prev = level.SeverityRank
	}
}

func TestAirQualityLevel_OutOfRange(t *testing.T) {
	for _, aqi := range []int{-1, 0, 6, 42} {
		assert.Equal(t, NotAvailable, AirQualityLevel(aqi), "aqi %d", aqi)
	}
	assert.Equal(t, NotAvailable, AirQualityLevelOf(nil))

	four := 4
	assert.Equal(t, "Poor", AirQualityLevelOf(&four).Label)
}

func TestLocalTimeFromOffset(t *testing.T) {
	ref := time.Date(2024, 3, 10, 22, 30, 0, 0, time.UTC)

	tokyo := LocalTimeFromOffset(9*3600, ref)
	assert.Equal(t, 11, tokyo.Day())
	assert.Equal(t, 7, tokyo.Hour())
	assert.Equal(t, 30, tokyo.Minute())
	assert.True(t, tokyo.Equal(ref), "the instant must not change")

	newYork := LocalTimeFromOffset(-5*3600, ref.In(time.FixedZone("X", 3600)))
	assert.Equal(t, 17, newYork.Hour())
}
