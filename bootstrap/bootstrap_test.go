package bootstrap

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"city-weather/config"
	"city-weather/diagnostics"
	"city-weather/logger"
	"city-weather/models"
	"city-weather/resolver"
	"city-weather/testutils"
	"city-weather/view"
)

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		App:         config.AppConfig{Name: "city-weather", Env: "test", LogLevel: "debug", Port: 8080},
		OpenWeather: config.OpenWeatherConfig{APIKey: "test-key", BaseURL: baseURL, Units: "metric", Timeout: 2 * time.Second},
		RateLimit:   config.RateLimitConfig{Enabled: true, RPS: 100, Burst: 10},
		Search:      config.SearchConfig{Debounce: 10 * time.Millisecond, Limit: 10, CacheTTL: time.Minute},
		AirQuality:  config.AirQualityConfig{CacheTTL: time.Minute},
		Display:     config.DisplayConfig{Timezone: "UTC"},
	}
}

func TestNew_LoadsCityEndToEnd(t *testing.T) {
	server := testutils.NewOpenWeatherServer(t)
	rec := &diagnostics.Recorder{}
	app := New(testConfig(server.URL), logger.Discard(), WithDiagnostics(rec))

	vm, err := app.Aggregator.LoadByCityName(context.Background(), "Paris")
	require.NoError(t, err)
	assert.Equal(t, "Paris", vm.Current.CityName)
	assert.Equal(t, "FR", vm.Current.CountryCode)
	require.Len(t, vm.ForecastDays, 7)
	require.NotNil(t, vm.AirQuality)
	assert.Equal(t, 3, vm.AirQuality.AQI)
	require.NotNil(t, vm.ForecastDays[0].AirQualityIndex)
	assert.Empty(t, rec.Events())

	// the air-quality forecast is served from cache the second time
	_, err = app.Aggregator.LoadByCityName(context.Background(), "Paris")
	require.NoError(t, err)
	assert.Equal(t, 1, server.Hits("/air_pollution/forecast"))
	assert.Equal(t, 2, server.Hits("/air_pollution"))
}

func TestNew_AirQualityOutage(t *testing.T) {
	server := testutils.NewOpenWeatherServer(t)
	server.SetFailAirQuality(true)
	rec := &diagnostics.Recorder{}
	app := New(testConfig(server.URL), logger.Discard(), WithDiagnostics(rec))

	vm, err := app.Aggregator.LoadByCityName(context.Background(), "London")
	require.NoError(t, err)
	assert.Nil(t, vm.AirQuality)
	assert.Len(t, rec.Events(), 2)
}

func TestNew_UnknownCity(t *testing.T) {
	server := testutils.NewOpenWeatherServer(t)
	app := New(testConfig(server.URL), logger.Discard())

	_, err := app.Aggregator.LoadByCityName(context.Background(), "Atlantis")
	assert.ErrorIs(t, err, models.ErrWeatherUnavailable)
}

func TestNew_SearchAndLocate(t *testing.T) {
	server := testutils.NewOpenWeatherServer(t)
	app := New(testConfig(server.URL), logger.Discard())

	results := app.Search.Search(context.Background(), "lon")
	require.Len(t, results, 1)
	assert.Equal(t, "London, GB", results[0].Label())

	app.Search.Search(context.Background(), "LON ")
	assert.Equal(t, 1, server.Hits("/find"))

	name, _, err := app.Locator.Locate(context.Background(), resolver.StaticGeolocator{Latitude: 51.5, Longitude: -0.12})
	require.NoError(t, err)
	assert.Equal(t, "London", name)
}

func TestNew_WithoutCachesOrRateLimit(t *testing.T) {
	server := testutils.NewOpenWeatherServer(t)
	cfg := testConfig(server.URL)
	cfg.RateLimit.Enabled = false
	cfg.Search.CacheTTL = 0
	cfg.AirQuality.CacheTTL = 0

	app := New(cfg, logger.Discard())
	assert.Nil(t, app.SearchCache)
	assert.Nil(t, app.AirCache)
	assert.Equal(t, "OpenWeatherMap", app.Provider.Name())
}

func TestApp_NewCoordinator(t *testing.T) {
	server := testutils.NewOpenWeatherServer(t)
	app := New(testConfig(server.URL), logger.Discard())
	c := app.NewCoordinator()
	defer c.Close()

	require.NoError(t, c.Navigate(context.Background(), "London"))
	s := c.Snapshot()
	assert.Equal(t, view.ScreenCity, s.Screen)
	assert.Equal(t, "London", s.ViewModel.Current.CityName)
	assert.False(t, s.LocalTime.IsZero())

	c.Search(context.Background(), "Par")
	assert.Eventually(t, func() bool { return len(c.Snapshot().SearchResults) == 1 }, time.Second, 10*time.Millisecond)
}

func TestApp_StartCachePruning(t *testing.T) {
	server := testutils.NewOpenWeatherServer(t)

	cfg := testConfig(server.URL)
	cfg.Search.CacheTTL = 0
	stop := New(cfg, logger.Discard()).StartCachePruning()
	require.NotNil(t, stop)
	stop()

	app := New(testConfig(server.URL), logger.Discard())
	stop = app.StartCachePruning()
	app.Search.Search(context.Background(), "par")
	stop()
	assert.Equal(t, 0, app.SearchCache.Prune())
}
