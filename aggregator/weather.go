// Package aggregator merges current conditions, the forecast and air
// quality into one city view model.
package aggregator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"city-weather/datasource"
	"city-weather/diagnostics"
	"city-weather/logger"
	"city-weather/models"
)

// Aggregator loads everything the city view needs for one city
type Aggregator struct {
	weather      datasource.WeatherProvider
	forecast     datasource.ForecastSource
	air          datasource.AirQualitySource
	diag         diagnostics.Sink
	logger       logger.Logger
	location     *time.Location
	now          func() time.Time
	fetchTimeout time.Duration
}

// Option customises an Aggregator
type Option func(*Aggregator)

// WithDiagnostics sets the sink for non-fatal failures
func WithDiagnostics(sink diagnostics.Sink) Option {
	return func(a *Aggregator) {
		if sink != nil {
			a.diag = sink
		}
	}
}

// WithLocation sets the timezone used for weekday labels and calendar dates
func WithLocation(loc *time.Location) Option {
	return func(a *Aggregator) {
		if loc != nil {
			a.location = loc
		}
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		if now != nil {
			a.now = now
		}
	}
}

// WithFetchTimeout bounds a whole load; zero disables the bound
func WithFetchTimeout(d time.Duration) Option {
	return func(a *Aggregator) {
		if d >= 0 {
			a.fetchTimeout = d
		}
	}
}

// New creates an aggregator over the given sources
func New(weather datasource.WeatherProvider, forecast datasource.ForecastSource, air datasource.AirQualitySource, log logger.Logger, opts ...Option) *Aggregator {
	a := &Aggregator{
		weather:      weather,
		forecast:     forecast,
		air:          air,
		diag:         diagnostics.Nop{},
		logger:       log.WithField("component", "aggregator"),
		location:     time.Local,
		now:          time.Now,
		fetchTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// LoadByCityName loads the view model for a city name. Current conditions
// and the forecast are fetched in parallel; air quality follows once the
// current conditions supply coordinates.
func (a *Aggregator) LoadByCityName(ctx context.Context, name string) (*models.CityViewModel, error) {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	loadID := uuid.NewString()
	location := models.ByName(name)
	log := a.logger.WithFields(map[string]interface{}{"load_id": loadID, "location": location.String()})
	log.Debug("Loading city by name")

	var (
		g           errgroup.Group
		current     models.CurrentConditions
		samples     []models.ForecastSample
		airCurrent  *models.AirQualitySample
		airForecast []models.AirQualitySample
		currentErr  error
		forecastErr error
	)

	g.Go(func() error {
		current, currentErr = a.weather.GetWeather(ctx, location)
		if currentErr != nil {
			return currentErr
		}
		airCurrent, airForecast = a.fetchAirQuality(ctx, current.Coordinates, location, loadID)
		return nil
	})
	g.Go(func() error {
		samples, forecastErr = a.forecast.FetchForecast(ctx, location)
		return forecastErr
	})

	if err := g.Wait(); err != nil {
		return nil, a.requiredError(log, location, currentErr, forecastErr)
	}
	return a.compose(log, current, samples, airCurrent, airForecast), nil
}

// LoadByCoordinates loads the view model for a device position. All four
// requests run in parallel since the coordinates are already known.
func (a *Aggregator) LoadByCoordinates(ctx context.Context, coords models.Coordinates) (*models.CityViewModel, error) {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	loadID := uuid.NewString()
	location := models.ByCoordinates(coords)
	log := a.logger.WithFields(map[string]interface{}{"load_id": loadID, "location": location.String()})
	log.Debug("Loading city by coordinates")

	var (
		g           errgroup.Group
		current     models.CurrentConditions
		samples     []models.ForecastSample
		airCurrent  *models.AirQualitySample
		airForecast []models.AirQualitySample
		currentErr  error
		forecastErr error
	)

	g.Go(func() error {
		current, currentErr = a.weather.GetWeather(ctx, location)
		return currentErr
	})
	g.Go(func() error {
		samples, forecastErr = a.forecast.FetchForecast(ctx, location)
		return forecastErr
	})
	g.Go(func() error {
		airCurrent, airForecast = a.fetchAirQuality(ctx, coords, location, loadID)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, a.requiredError(log, location, currentErr, forecastErr)
	}
	return a.compose(log, current, samples, airCurrent, airForecast), nil
}

func (a *Aggregator) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.fetchTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.fetchTimeout)
}

// requiredError maps the failed required call to its error kind. Current
// conditions take precedence when both failed.
func (a *Aggregator) requiredError(log logger.Logger, location models.Location, currentErr, forecastErr error) error {
	loadErr := &LoadError{Kind: models.ErrWeatherUnavailable, Location: location, Err: currentErr}
	if currentErr == nil {
		loadErr.Kind = models.ErrForecastUnavailable
		loadErr.Err = forecastErr
	}
	log.WithField("error", loadErr.Error()).Warn("City load failed")
	return loadErr
}

// fetchAirQuality fetches the current reading and the forecast in
// parallel. Failures are reported to the diagnostics sink and yield nil.
func (a *Aggregator) fetchAirQuality(ctx context.Context, coords models.Coordinates, location models.Location, loadID string) (*models.AirQualitySample, []models.AirQualitySample) {
	if a.air == nil {
		return nil, nil
	}

	var (
		g        errgroup.Group
		current  *models.AirQualitySample
		forecast []models.AirQualitySample
	)

	g.Go(func() error {
		readings, err := a.air.GetAirQuality(ctx, coords)
		if err != nil {
			a.reportAirQuality("air_pollution", location, loadID, err)
			return nil
		}
		if len(readings) > 0 {
			first := readings[0]
			current = &first
		}
		return nil
	})
	g.Go(func() error {
		points, err := a.air.FetchAirQualityForecast(ctx, coords)
		if err != nil {
			a.reportAirQuality("air_pollution_forecast", location, loadID, err)
			return nil
		}
		forecast = points
		return nil
	})

	_ = g.Wait()
	return current, forecast
}

func (a *Aggregator) reportAirQuality(source string, location models.Location, loadID string, err error) {
	a.diag.Emit(diagnostics.Event{
		Kind:     diagnostics.AirQualityUnavailable,
		Source:   source,
		Location: location.String(),
		LoadID:   loadID,
		Err:      fmt.Errorf("%w: %v", models.ErrAirQualityUnavailable, err),
		Time:     a.now(),
	})
}

func (a *Aggregator) compose(log logger.Logger, current models.CurrentConditions, samples []models.ForecastSample, airCurrent *models.AirQualitySample, airForecast []models.AirQualitySample) *models.CityViewModel {
	today := a.now().In(a.location)
	vm := &models.CityViewModel{
		Current:         current,
		ForecastDays:    BuildForecastDays(samples, airForecast, today),
		AirQuality:      airCurrent,
		TemperatureUnit: models.Celsius,
	}
	log.Infof("Loaded %s with %d forecast days", current.CityName, len(vm.ForecastDays))
	return vm
}

// LoadError is returned when a required call fails. Kind is
// models.ErrWeatherUnavailable or models.ErrForecastUnavailable and Err is
// the provider error.
type LoadError struct {
	Kind     error
	Location models.Location
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%v for %s: %v", e.Kind, e.Location, e.Err)
}

// Unwrap exposes both the error kind and the provider error
func (e *LoadError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}
