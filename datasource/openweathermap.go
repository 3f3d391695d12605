package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"city-weather/logger"
	"city-weather/models"
)

// DefaultBaseURL is the OpenWeatherMap 2.5 API root
const DefaultBaseURL = "https://api.openweathermap.org/data/2.5"

// MaxSearchResults is the largest page the find endpoint serves
const MaxSearchResults = 10

// maxResponseBytes caps a response body; a 5-day forecast is well under 100KB
const maxResponseBytes = 4 << 20

// OpenWeatherMapProvider implements every datasource interface against OpenWeatherMap
type OpenWeatherMapProvider struct {
	apiKey     string
	baseURL    string
	units      string
	httpClient *http.Client
	logger     logger.Logger
}

// Option customises an OpenWeatherMapProvider
type Option func(*OpenWeatherMapProvider)

// WithBaseURL points the provider at a different API root
func WithBaseURL(baseURL string) Option {
	return func(p *OpenWeatherMapProvider) {
		if baseURL != "" {
			p.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithHTTPClient replaces the default HTTP client. The provider works on a
// copy, so later options never modify c.
func WithHTTPClient(c *http.Client) Option {
	return func(p *OpenWeatherMapProvider) {
		if c != nil {
			clone := *c
			p.httpClient = &clone
		}
	}
}

// WithTimeout sets the per-request timeout of the provider's client
func WithTimeout(d time.Duration) Option {
	return func(p *OpenWeatherMapProvider) {
		if d > 0 {
			p.httpClient.Timeout = d
		}
	}
}

// WithUnits sets the units parameter sent with weather and forecast requests
func WithUnits(units string) Option {
	return func(p *OpenWeatherMapProvider) {
		if units != "" {
			p.units = units
		}
	}
}

// WithLogger sets the provider logger
func WithLogger(l logger.Logger) Option {
	return func(p *OpenWeatherMapProvider) {
		if l != nil {
			p.logger = l.WithField("component", "openweathermap")
		}
	}
}

// NewOpenWeatherMapProvider creates a new OpenWeatherMap provider
func NewOpenWeatherMapProvider(apiKey string, opts ...Option) *OpenWeatherMapProvider {
	p := &OpenWeatherMapProvider{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		units:   "metric",
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger.Discard(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the provider name
func (p *OpenWeatherMapProvider) Name() string {
	return "OpenWeatherMap"
}

type owmCondition struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type owmMain struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	TempMin   float64 `json:"temp_min"`
	TempMax   float64 `json:"temp_max"`
	Pressure  int     `json:"pressure"`
	Humidity  int     `json:"humidity"`
}

type owmCoord struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// currentResponse is the /weather payload
type currentResponse struct {
	Coord   owmCoord       `json:"coord"`
	Weather []owmCondition `json:"weather"`
	Main    owmMain        `json:"main"`
	Wind    struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Sys struct {
		Country string `json:"country"`
	} `json:"sys"`
	Timezone int    `json:"timezone"`
	Name     string `json:"name"`
}

// forecastResponse is the /forecast payload
type forecastResponse struct {
	List []struct {
		Dt      int64          `json:"dt"`
		Main    owmMain        `json:"main"`
		Weather []owmCondition `json:"weather"`
		Clouds  struct {
			All int `json:"all"`
		} `json:"clouds"`
		Wind struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
	} `json:"list"`
}

// airPollutionResponse is the payload of both air_pollution endpoints
type airPollutionResponse struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			AQI int `json:"aqi"`
		} `json:"main"`
	} `json:"list"`
}

// findResponse is the /find payload
type findResponse struct {
	List []struct {
		Name  string   `json:"name"`
		Coord owmCoord `json:"coord"`
		Sys   struct {
			Country string `json:"country"`
		} `json:"sys"`
	} `json:"list"`
}

// GetWeather fetches current conditions for a location
func (p *OpenWeatherMapProvider) GetWeather(ctx context.Context, location models.Location) (models.CurrentConditions, error) {
	params, err := locationParams(location)
	if err != nil {
		return models.CurrentConditions{}, err
	}
	params.Set("units", p.units)

	var response currentResponse
	if err := p.get(ctx, "/weather", params, &response); err != nil {
		return models.CurrentConditions{}, err
	}

	current := models.CurrentConditions{
		CityName:              response.Name,
		CountryCode:           response.Sys.Country,
		TimezoneOffsetSeconds: response.Timezone,
		Temperature:           response.Main.Temp,
		FeelsLike:             response.Main.FeelsLike,
		HumidityPercent:       response.Main.Humidity,
		WindSpeed:             response.Wind.Speed,
		PressureHPa:           response.Main.Pressure,
		Coordinates: models.Coordinates{
			Latitude:  response.Coord.Lat,
			Longitude: response.Coord.Lon,
		},
	}

	// Extract weather description and icon if available
	if len(response.Weather) > 0 {
		current.ConditionCode = response.Weather[0].ID
		current.ConditionDescription = response.Weather[0].Description
		current.Icon = response.Weather[0].Icon
	}

	return current, nil
}

// FetchForecast fetches the 5-day/3-hour forecast for a location
func (p *OpenWeatherMapProvider) FetchForecast(ctx context.Context, location models.Location) ([]models.ForecastSample, error) {
	params, err := locationParams(location)
	if err != nil {
		return nil, err
	}
	params.Set("units", p.units)

	var response forecastResponse
	if err := p.get(ctx, "/forecast", params, &response); err != nil {
		return nil, err
	}

	samples := make([]models.ForecastSample, 0, len(response.List))
	for _, item := range response.List {
		sample := models.ForecastSample{
			Timestamp:       time.Unix(item.Dt, 0).UTC(),
			Temperature:     item.Main.Temp,
			TempMax:         item.Main.TempMax,
			TempMin:         item.Main.TempMin,
			FeelsLike:       item.Main.FeelsLike,
			HumidityPercent: item.Main.Humidity,
			PressureHPa:     item.Main.Pressure,
			WindSpeed:       item.Wind.Speed,
			CloudsPercent:   item.Clouds.All,
		}
		if len(item.Weather) > 0 {
			sample.ConditionCode = item.Weather[0].ID
			sample.ConditionDescription = item.Weather[0].Description
			sample.Icon = item.Weather[0].Icon
		}
		samples = append(samples, sample)
	}

	return samples, nil
}

// GetAirQuality fetches current air pollution for coordinates
func (p *OpenWeatherMapProvider) GetAirQuality(ctx context.Context, coords models.Coordinates) ([]models.AirQualitySample, error) {
	return p.airPollution(ctx, "/air_pollution", coords)
}

// FetchAirQualityForecast fetches the air pollution forecast for coordinates
func (p *OpenWeatherMapProvider) FetchAirQualityForecast(ctx context.Context, coords models.Coordinates) ([]models.AirQualitySample, error) {
	return p.airPollution(ctx, "/air_pollution/forecast", coords)
}

func (p *OpenWeatherMapProvider) airPollution(ctx context.Context, endpoint string, coords models.Coordinates) ([]models.AirQualitySample, error) {
	params, err := locationParams(models.ByCoordinates(coords))
	if err != nil {
		return nil, err
	}

	var response airPollutionResponse
	if err := p.get(ctx, endpoint, params, &response); err != nil {
		return nil, err
	}

	samples := make([]models.AirQualitySample, 0, len(response.List))
	for _, item := range response.List {
		samples = append(samples, models.AirQualitySample{
			Timestamp: time.Unix(item.Dt, 0).UTC(),
			AQI:       item.Main.AQI,
		})
	}
	return samples, nil
}

// FindCities searches cities by name prefix, sorted by population
func (p *OpenWeatherMapProvider) FindCities(ctx context.Context, query string, limit int) ([]models.CityCandidate, error) {
	if limit <= 0 || limit > MaxSearchResults {
		limit = MaxSearchResults
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "like")
	params.Set("sort", "population")
	params.Set("cnt", strconv.Itoa(limit))

	var response findResponse
	if err := p.get(ctx, "/find", params, &response); err != nil {
		return nil, err
	}

	candidates := make([]models.CityCandidate, 0, len(response.List))
	for _, city := range response.List {
		candidates = append(candidates, models.CityCandidate{
			Name:        city.Name,
			CountryCode: city.Sys.Country,
			Latitude:    city.Coord.Lat,
			Longitude:   city.Coord.Lon,
		})
	}
	return candidates, nil
}

// get issues a GET against endpoint and decodes the JSON body into out
func (p *OpenWeatherMapProvider) get(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	params.Set("appid", p.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	start := time.Now()
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if len(body) > maxResponseBytes {
		return fmt.Errorf("response from %s exceeds %d bytes", endpoint, maxResponseBytes)
	}

	p.logger.WithFields(map[string]interface{}{
		"endpoint": endpoint,
		"status":   resp.StatusCode,
		"latency":  time.Since(start).String(),
	}).Debug("provider request completed")

	if resp.StatusCode != http.StatusOK {
		return &StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

var errEmptyLocation = errors.New("location needs a city name or coordinates")

func locationParams(location models.Location) (url.Values, error) {
	params := url.Values{}
	switch {
	case location.Coordinates != nil:
		params.Set("lat", strconv.FormatFloat(location.Coordinates.Latitude, 'f', -1, 64))
		params.Set("lon", strconv.FormatFloat(location.Coordinates.Longitude, 'f', -1, 64))
	case strings.TrimSpace(location.Name) != "":
		params.Set("q", location.Name)
	default:
		return nil, errEmptyLocation
	}
	return params, nil
}

// Ensure OpenWeatherMapProvider implements every interface
var _ Provider = (*OpenWeatherMapProvider)(nil)
