package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"city-weather/datasource"
	"city-weather/logger"
	"city-weather/models"
)

// Geolocator is the platform's position capability. A nil Geolocator means
// the platform has none.
type Geolocator interface {
	CurrentPosition(ctx context.Context) (models.Coordinates, error)
}

// GeolocatorFunc adapts a function to Geolocator
type GeolocatorFunc func(ctx context.Context) (models.Coordinates, error)

// CurrentPosition calls f
func (f GeolocatorFunc) CurrentPosition(ctx context.Context) (models.Coordinates, error) {
	return f(ctx)
}

// StaticGeolocator always reports the same position
type StaticGeolocator models.Coordinates

// CurrentPosition returns the fixed position
func (g StaticGeolocator) CurrentPosition(ctx context.Context) (models.Coordinates, error) {
	return models.Coordinates(g), nil
}

// PositionError is the error a platform reports when it refuses a position
type PositionError struct {
	Message string
}

func (e *PositionError) Error() string {
	return e.Message
}

// LocationResolver turns a device position into a city name
type LocationResolver struct {
	weather datasource.WeatherProvider
	logger  logger.Logger
}

// NewLocationResolver creates a resolver doing reverse lookups against weather
func NewLocationResolver(weather datasource.WeatherProvider, log logger.Logger) *LocationResolver {
	return &LocationResolver{
		weather: weather,
		logger:  log.WithField("component", "location_resolver"),
	}
}

// Locate asks geo for a position and resolves it to a city name
func (r *LocationResolver) Locate(ctx context.Context, geo Geolocator) (string, models.Coordinates, error) {
	if geo == nil {
		return "", models.Coordinates{}, models.ErrGeolocationUnsupported
	}

	coords, err := geo.CurrentPosition(ctx)
	if err != nil {
		if errors.Is(err, models.ErrGeolocationUnsupported) {
			return "", models.Coordinates{}, err
		}
		return "", models.Coordinates{}, fmt.Errorf("%w: %s", models.ErrGeolocationDenied, err.Error())
	}

	name, err := r.ResolveFromCoordinates(ctx, coords)
	if err != nil {
		return "", coords, err
	}
	return name, coords, nil
}

// ResolveFromCoordinates returns the name the provider reports for coords.
// That name, not the coordinates, is the routing key for the city.
func (r *LocationResolver) ResolveFromCoordinates(ctx context.Context, coords models.Coordinates) (string, error) {
	current, err := r.weather.GetWeather(ctx, models.ByCoordinates(coords))
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrWeatherUnavailable, err)
	}

	name := strings.TrimSpace(current.CityName)
	if name == "" {
		return "", fmt.Errorf("%w: no city name for %s", models.ErrWeatherUnavailable, coords)
	}

	r.logger.Infof("Resolved %s to %s", coords, name)
	return name, nil
}
