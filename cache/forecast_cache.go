package cache

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"city-weather/datasource"
	"city-weather/logger"
	"city-weather/models"
)

// CachedAirQualitySource wraps an AirQualitySource and caches its hourly
// forecast. Current readings always go to the source.
type CachedAirQualitySource struct {
	source         datasource.AirQualitySource
	cache          map[string]airForecastEntry // key is rounded lat,lon
	mutex          sync.RWMutex
	cacheDuration  time.Duration
	cacheHitCount  int
	cacheMissCount int
	now            func() time.Time
	logger         logger.Logger
}

// airForecastEntry represents a cached forecast with its timestamp
type airForecastEntry struct {
	Data      []models.AirQualitySample
	Timestamp time.Time
}

// NewCachedAirQualitySource creates a new cached wrapper around an air-quality source
func NewCachedAirQualitySource(source datasource.AirQualitySource, cacheDuration time.Duration, log logger.Logger) *CachedAirQualitySource {
	return &CachedAirQualitySource{
		source:        source,
		cache:         make(map[string]airForecastEntry),
		cacheDuration: cacheDuration,
		now:           time.Now,
		logger:        log.WithField("component", "air_quality_cache"),
	}
}

// Name returns the name of the underlying source with [Cached] suffix
func (c *CachedAirQualitySource) Name() string {
	return c.source.Name() + " [Cached]"
}

// GetAirQuality forwards to the source
func (c *CachedAirQualitySource) GetAirQuality(ctx context.Context, coords models.Coordinates) ([]models.AirQualitySample, error) {
	return c.source.GetAirQuality(ctx, coords)
}

// FetchAirQualityForecast fetches the forecast, using the cache when available
func (c *CachedAirQualitySource) FetchAirQualityForecast(ctx context.Context, coords models.Coordinates) ([]models.AirQualitySample, error) {
	cacheKey := coordinateKey(coords)

	c.mutex.RLock()
	entry, found := c.cache[cacheKey]
	c.mutex.RUnlock()

	if found && c.now().Sub(entry.Timestamp) < c.cacheDuration {
		c.mutex.Lock()
		c.cacheHitCount++
		c.mutex.Unlock()

		c.logger.Debugf("Air quality forecast cache HIT for %s (age: %s)", cacheKey, c.now().Sub(entry.Timestamp).Round(time.Second))
		return entry.Data, nil
	}

	c.mutex.Lock()
	c.cacheMissCount++
	c.mutex.Unlock()

	c.logger.Debugf("Air quality forecast cache MISS for %s, fetching fresh data", cacheKey)

	forecast, err := c.source.FetchAirQualityForecast(ctx, coords)
	if err != nil {
		return nil, err
	}

	c.mutex.Lock()
	c.cache[cacheKey] = airForecastEntry{
		Data:      forecast,
		Timestamp: c.now(),
	}
	c.mutex.Unlock()

	return forecast, nil
}

// CacheStats returns statistics about cache hits and misses
func (c *CachedAirQualitySource) CacheStats() (hits, misses int) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.cacheHitCount, c.cacheMissCount
}

// coordinateKey rounds to 2 decimal places (about 1.1km) so nearby
// lookups share an entry.
func coordinateKey(c models.Coordinates) string {
	const precision = 100.0
	lat := math.Round(c.Latitude*precision) / precision
	lon := math.Round(c.Longitude*precision) / precision
	return fmt.Sprintf("%.2f,%.2f", lat, lon)
}

// Ensure CachedAirQualitySource implements AirQualitySource
var _ datasource.AirQualitySource = (*CachedAirQualitySource)(nil)
