package datasource

import (
	"context"

	"city-weather/models"
)

// WeatherProvider is an interface for services that can fetch current weather data
type WeatherProvider interface {
	// GetWeather fetches current conditions for a city name or coordinates
	GetWeather(ctx context.Context, location models.Location) (models.CurrentConditions, error)

	// Name returns the provider's name
	Name() string
}

// ForecastSource is an interface for services that can fetch 3-hour forecasts
type ForecastSource interface {
	// FetchForecast fetches the forecast list, earliest entry first
	FetchForecast(ctx context.Context, location models.Location) ([]models.ForecastSample, error)

	// Name returns the source's name
	Name() string
}

// AirQualitySource is an interface for services that report air pollution
type AirQualitySource interface {
	// GetAirQuality fetches the current air-quality readings
	GetAirQuality(ctx context.Context, coords models.Coordinates) ([]models.AirQualitySample, error)

	// FetchAirQualityForecast fetches the hourly air-quality forecast
	FetchAirQualityForecast(ctx context.Context, coords models.Coordinates) ([]models.AirQualitySample, error)

	// Name returns the source's name
	Name() string
}

// CitySearcher looks up cities matching free text, most populous first
type CitySearcher interface {
	FindCities(ctx context.Context, query string, limit int) ([]models.CityCandidate, error)
}

// Provider is implemented by backends that serve every endpoint
type Provider interface {
	WeatherProvider
	ForecastSource
	AirQualitySource
	CitySearcher
}
