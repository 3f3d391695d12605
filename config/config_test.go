package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"WEATHER_API_KEY", "OPENWEATHER_API_KEY", "OPENWEATHER_BASE_URL",
	"PORT", "LOG_LEVEL", "APP_ENV", "DISPLAY_TIMEZONE",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
app:
  name: "city-weather-test"
  env: "test"
  log_level: "debug"
  port: 9090
openweather:
  api_key: "file-key"
  timeout: "3s"
rate_limit:
  enabled: false
search:
  debounce: "200ms"
  limit: 5
display:
  timezone: "Europe/Paris"
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "city-weather-test", cfg.App.Name)
	assert.Equal(t, "test", cfg.App.Env)
	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, 9090, cfg.App.Port)
	assert.Equal(t, "file-key", cfg.OpenWeather.APIKey)
	assert.Equal(t, 3*time.Second, cfg.OpenWeather.Timeout)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 200*time.Millisecond, cfg.Search.Debounce)
	assert.Equal(t, 5, cfg.Search.Limit)
	assert.Equal(t, "Europe/Paris", cfg.Display.Location().String())

	// untouched keys keep their defaults
	assert.Equal(t, "https://api.openweathermap.org/data/2.5", cfg.OpenWeather.BaseURL)
	assert.Equal(t, "metric", cfg.OpenWeather.Units)
	assert.Equal(t, 5*time.Second, cfg.App.ShutdownTimeout)
	assert.Equal(t, time.Minute, cfg.Search.CacheTTL)
	assert.Equal(t, 10*time.Minute, cfg.AirQuality.CacheTTL)
	assert.Equal(t, 5, cfg.RateLimit.Burst)
}

func TestLoad_DefaultsAndEnv(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())
	t.Setenv("WEATHER_API_KEY", "legacy-key")
	t.Setenv("OPENWEATHER_API_KEY", "env-key")
	t.Setenv("PORT", "7070")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("APP_ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.OpenWeather.APIKey)
	assert.Equal(t, 7070, cfg.App.Port)
	assert.Equal(t, "warn", cfg.App.LogLevel)
	assert.Equal(t, "production", cfg.App.Env)
	assert.Equal(t, "city-weather", cfg.App.Name)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 1.0, cfg.RateLimit.RPS)
	assert.Equal(t, 150*time.Millisecond, cfg.Search.Debounce)
	assert.Equal(t, 10, cfg.Search.Limit)
	assert.Equal(t, time.Local, cfg.Display.Location())
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing api key", func(t *testing.T) {
		clearEnv(t)
		chdir(t, t.TempDir())

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "API key")
	})

	t.Run("explicit file missing", func(t *testing.T) {
		clearEnv(t)
		_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read config file")
	})

	t.Run("malformed yaml", func(t *testing.T) {
		clearEnv(t)
		_, err := LoadFile(writeConfig(t, "app: [unclosed"))
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			App:         AppConfig{Port: 8080, ShutdownTimeout: time.Second},
			OpenWeather: OpenWeatherConfig{APIKey: "k", BaseURL: "http://x", Timeout: time.Second},
			RateLimit:   RateLimitConfig{Enabled: true, RPS: 1, Burst: 1},
			Search:      SearchConfig{Debounce: time.Millisecond, Limit: 10},
			Display:     DisplayConfig{Timezone: "UTC"},
		}
	}

	cfg := valid()
	require.NoError(t, cfg.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"port", func(c *Config) { c.App.Port = 0 }, "port"},
		{"limit low", func(c *Config) { c.Search.Limit = 0 }, "search limit"},
		{"limit high", func(c *Config) { c.Search.Limit = 11 }, "search limit"},
		{"negative debounce", func(c *Config) { c.Search.Debounce = -time.Second }, "search.debounce"},
		{"rps", func(c *Config) { c.RateLimit.RPS = 0 }, "rps"},
		{"timezone", func(c *Config) { c.Display.Timezone = "Mars/Olympus" }, "timezone"},
		{"base url", func(c *Config) { c.OpenWeather.BaseURL = "" }, "base URL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	t.Run("disabled rate limit ignores rps", func(t *testing.T) {
		cfg := valid()
		cfg.RateLimit = RateLimitConfig{}
		assert.NoError(t, cfg.Validate())
	})
}
