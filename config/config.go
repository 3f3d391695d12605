// Package config loads application settings from config.yaml, the
// environment and defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App         AppConfig         `mapstructure:"app"`
	OpenWeather OpenWeatherConfig `mapstructure:"openweather"`
	RateLimit   RateLimitConfig   `mapstructure:"rate_limit"`
	Search      SearchConfig      `mapstructure:"search"`
	AirQuality  AirQualityConfig  `mapstructure:"air_quality"`
	Display     DisplayConfig     `mapstructure:"display"`
}

type AppConfig struct {
	Name            string        `mapstructure:"name"`
	Env             string        `mapstructure:"env"`
	LogLevel        string        `mapstructure:"log_level"`
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type OpenWeatherConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Units   string        `mapstructure:"units"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	RPS     float64 `mapstructure:"rps"`
	Burst   int     `mapstructure:"burst"`
}

type SearchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
	Limit    int           `mapstructure:"limit"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type AirQualityConfig struct {
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type DisplayConfig struct {
	Timezone string `mapstructure:"timezone"`
}

// Location resolves the display timezone. Load has already validated it.
func (d DisplayConfig) Location() *time.Location {
	loc, err := loadLocation(d.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func loadLocation(name string) (*time.Location, error) {
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(name)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "city-weather")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.shutdown_timeout", 5*time.Second)

	v.SetDefault("openweather.base_url", "https://api.openweathermap.org/data/2.5")
	v.SetDefault("openweather.units", "metric")
	v.SetDefault("openweather.timeout", 10*time.Second)

	// OpenWeatherMap free tier: 60 calls/minute
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.rps", 1.0)
	v.SetDefault("rate_limit.burst", 5)

	v.SetDefault("search.debounce", 150*time.Millisecond)
	v.SetDefault("search.limit", 10)
	v.SetDefault("search.cache_ttl", time.Minute)

	v.SetDefault("air_quality.cache_ttl", 10*time.Minute)

	v.SetDefault("display.timezone", "Local")
}

// Load reads config.yaml from the standard search paths
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile reads the given config file, or searches the standard paths
// when path is empty. A missing file in the search paths is not an error.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/city-weather/")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	applyEnv(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func applyEnv(v *viper.Viper) {
	overrides := []struct {
		env string
		key string
	}{
		{"WEATHER_API_KEY", "openweather.api_key"},
		{"OPENWEATHER_API_KEY", "openweather.api_key"},
		{"OPENWEATHER_BASE_URL", "openweather.base_url"},
		{"PORT", "app.port"},
		{"LOG_LEVEL", "app.log_level"},
		{"APP_ENV", "app.env"},
		{"DISPLAY_TIMEZONE", "display.timezone"},
	}
	// later entries win
	for _, o := range overrides {
		if value := strings.TrimSpace(os.Getenv(o.env)); value != "" {
			v.Set(o.key, value)
		}
	}
}

// Validate checks the settings the app cannot run without
func (c *Config) Validate() error {
	if c.OpenWeather.APIKey == "" {
		return fmt.Errorf("OpenWeather API key must not be empty")
	}
	if c.OpenWeather.BaseURL == "" {
		return fmt.Errorf("OpenWeather base URL must not be empty")
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		return fmt.Errorf("port %d is out of range", c.App.Port)
	}
	if c.Search.Limit < 1 || c.Search.Limit > 10 {
		return fmt.Errorf("search limit must be between 1 and 10, got %d", c.Search.Limit)
	}
	if c.RateLimit.Enabled && c.RateLimit.RPS <= 0 {
		return fmt.Errorf("rate limit rps must be positive")
	}

	durations := map[string]time.Duration{
		"app.shutdown_timeout":  c.App.ShutdownTimeout,
		"openweather.timeout":   c.OpenWeather.Timeout,
		"search.debounce":       c.Search.Debounce,
		"search.cache_ttl":      c.Search.CacheTTL,
		"air_quality.cache_ttl": c.AirQuality.CacheTTL,
	}
	for key, d := range durations {
		if d < 0 {
			return fmt.Errorf("%s must not be negative", key)
		}
	}

	if _, err := loadLocation(c.Display.Timezone); err != nil {
		return fmt.Errorf("unknown display timezone %q: %w", c.Display.Timezone, err)
	}
	return nil
}
