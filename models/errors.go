package models

import "errors"

// Error kinds surfaced by resolvers and aggregators. Callers match them
// with errors.Is; the wrapped error carries the cause.
var (
	// ErrGeolocationUnsupported means the platform has no geolocation capability
	ErrGeolocationUnsupported = errors.New("geolocation is not supported")
	// ErrGeolocationDenied means the platform reported a position error
	ErrGeolocationDenied = errors.New("unable to access location")
	// ErrWeatherUnavailable means current conditions could not be fetched
	ErrWeatherUnavailable = errors.New("weather data not available")
	// ErrForecastUnavailable means the forecast could not be fetched
	ErrForecastUnavailable = errors.New("forecast data not available")
	// ErrAirQualityUnavailable is non-fatal and only reported as a diagnostic
	ErrAirQualityUnavailable = errors.New("air quality data not available")
	// ErrSearchFailed is non-fatal; searches degrade to no results
	ErrSearchFailed = errors.New("city search failed")
)
