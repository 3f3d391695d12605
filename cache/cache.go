package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"city-weather/datasource"
	"city-weather/logger"
	"city-weather/models"
)

// CachedSearcher wraps a CitySearcher and remembers recent result lists
type CachedSearcher struct {
	source         datasource.CitySearcher
	cache          map[string]searchEntry // key is normalized query:limit
	mutex          sync.RWMutex
	cacheDuration  time.Duration
	cacheHitCount  int
	cacheMissCount int
	now            func() time.Time
	logger         logger.Logger
}

// searchEntry represents a cached result list with its timestamp
type searchEntry struct {
	Data      []models.CityCandidate
	Timestamp time.Time
}

// NewCachedSearcher creates a new cached wrapper around a city searcher
func NewCachedSearcher(source datasource.CitySearcher, cacheDuration time.Duration, log logger.Logger) *CachedSearcher {
	return &CachedSearcher{
		source:        source,
		cache:         make(map[string]searchEntry),
		cacheDuration: cacheDuration,
		now:           time.Now,
		logger:        log.WithField("component", "search_cache"),
	}
}

// FindCities returns cached results when fresh, otherwise asks the source.
// Failures are never cached.
func (c *CachedSearcher) FindCities(ctx context.Context, query string, limit int) ([]models.CityCandidate, error) {
	cacheKey := fmt.Sprintf("%s:%d", strings.ToLower(strings.TrimSpace(query)), limit)

	c.mutex.RLock()
	entry, found := c.cache[cacheKey]
	c.mutex.RUnlock()

	if found && c.now().Sub(entry.Timestamp) < c.cacheDuration {
		c.mutex.Lock()
		c.cacheHitCount++
		c.mutex.Unlock()

		c.logger.Debugf("Search cache HIT for %q (age: %s)", query, c.now().Sub(entry.Timestamp).Round(time.Second))
		return entry.Data, nil
	}

	c.mutex.Lock()
	c.cacheMissCount++
	c.mutex.Unlock()

	c.logger.Debugf("Search cache MISS for %q, fetching fresh results", query)

	data, err := c.source.FindCities(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	c.mutex.Lock()
	c.cache[cacheKey] = searchEntry{
		Data:      data,
		Timestamp: c.now(),
	}
	c.mutex.Unlock()

	return data, nil
}

// Prune drops expired entries and returns how many were removed
func (c *CachedSearcher) Prune() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	pruned := 0
	for key, entry := range c.cache {
		if c.now().Sub(entry.Timestamp) >= c.cacheDuration {
			delete(c.cache, key)
			pruned++
		}
	}
	return pruned
}

// CacheStats returns statistics about cache hits and misses
func (c *CachedSearcher) CacheStats() (hits, misses int) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.cacheHitCount, c.cacheMissCount
}

// Ensure CachedSearcher implements the CitySearcher interface
var _ datasource.CitySearcher = (*CachedSearcher)(nil)
