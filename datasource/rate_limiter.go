package datasource

import (
	"context"
	"fmt"

	"city-weather/models"

	"golang.org/x/time/rate"
)

// RateLimits holds the request rate of each endpoint family.
// rps may be fractional for less than one request per second.
type RateLimits struct {
	WeatherRPS    float64
	ForecastRPS   float64
	AirQualityRPS float64
	SearchRPS     float64
	Burst         int
}

// UniformRateLimits applies the same rate to every endpoint family
func UniformRateLimits(rps float64, burst int) RateLimits {
	return RateLimits{
		WeatherRPS:    rps,
		ForecastRPS:   rps,
		AirQualityRPS: rps,
		SearchRPS:     rps,
		Burst:         burst,
	}
}

// RateLimitedProvider wraps a Provider with one limiter per endpoint family
type RateLimitedProvider struct {
	provider        Provider
	weatherLimiter  *rate.Limiter
	forecastLimiter *rate.Limiter
	airLimiter      *rate.Limiter
	searchLimiter   *rate.Limiter
	name            string
}

// NewRateLimitedProvider creates a provider that waits for its limiter before
// forwarding each call
func NewRateLimitedProvider(provider Provider, limits RateLimits) *RateLimitedProvider {
	burst := limits.Burst
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedProvider{
		provider:        provider,
		weatherLimiter:  rate.NewLimiter(rate.Limit(limits.WeatherRPS), burst),
		forecastLimiter: rate.NewLimiter(rate.Limit(limits.ForecastRPS), burst),
		airLimiter:      rate.NewLimiter(rate.Limit(limits.AirQualityRPS), burst),
		searchLimiter:   rate.NewLimiter(rate.Limit(limits.SearchRPS), burst),
		name:            fmt.Sprintf("%s [Rate Limited]", provider.Name()),
	}
}

func wait(ctx context.Context, l *rate.Limiter) error {
	if err := l.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait canceled: %w", err)
	}
	return nil
}

// GetWeather implements WeatherProvider with rate limiting
func (r *RateLimitedProvider) GetWeather(ctx context.Context, location models.Location) (models.CurrentConditions, error) {
	if err := wait(ctx, r.weatherLimiter); err != nil {
		return models.CurrentConditions{}, err
	}
	return r.provider.GetWeather(ctx, location)
}

// FetchForecast implements ForecastSource with rate limiting
func (r *RateLimitedProvider) FetchForecast(ctx context.Context, location models.Location) ([]models.ForecastSample, error) {
	if err := wait(ctx, r.forecastLimiter); err != nil {
		return nil, err
	}
	return r.provider.FetchForecast(ctx, location)
}

// GetAirQuality implements AirQualitySource with rate limiting
func (r *RateLimitedProvider) GetAirQuality(ctx context.Context, coords models.Coordinates) ([]models.AirQualitySample, error) {
	if err := wait(ctx, r.airLimiter); err != nil {
		return nil, err
	}
	return r.provider.GetAirQuality(ctx, coords)
}

// FetchAirQualityForecast implements AirQualitySource with rate limiting.
// It shares the air-quality limiter with GetAirQuality.
func (r *RateLimitedProvider) FetchAirQualityForecast(ctx context.Context, coords models.Coordinates) ([]models.AirQualitySample, error) {
	if err := wait(ctx, r.airLimiter); err != nil {
		return nil, err
	}
	return r.provider.FetchAirQualityForecast(ctx, coords)
}

// FindCities implements CitySearcher with rate limiting
func (r *RateLimitedProvider) FindCities(ctx context.Context, query string, limit int) ([]models.CityCandidate, error) {
	if err := wait(ctx, r.searchLimiter); err != nil {
		return nil, err
	}
	return r.provider.FindCities(ctx, query, limit)
}

// Name returns the provider name
func (r *RateLimitedProvider) Name() string {
	return r.name
}

// Verify that the rate limited provider implements every interface
var _ Provider = (*RateLimitedProvider)(nil)
