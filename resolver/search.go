// Package resolver turns user input (free text, a device position) into
// city identities the rest of the app can navigate to.
package resolver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"city-weather/datasource"
	"city-weather/diagnostics"
	"city-weather/logger"
	"city-weather/models"
)

// CitySearch resolves free text into ranked city candidates
type CitySearch struct {
	searcher datasource.CitySearcher
	limit    int
	diag     diagnostics.Sink
	logger   logger.Logger
}

// NewCitySearch creates a search resolver returning at most limit candidates
func NewCitySearch(searcher datasource.CitySearcher, limit int, diag diagnostics.Sink, log logger.Logger) *CitySearch {
	if limit <= 0 || limit > datasource.MaxSearchResults {
		limit = datasource.MaxSearchResults
	}
	if diag == nil {
		diag = diagnostics.Nop{}
	}
	return &CitySearch{
		searcher: searcher,
		limit:    limit,
		diag:     diag,
		logger:   log.WithField("component", "city_search"),
	}
}

// Search returns candidates in the provider's population order. A blank
// query returns no candidates without a network call, and any failure
// degrades to an empty list.
func (s *CitySearch) Search(ctx context.Context, query string) []models.CityCandidate {
	if strings.TrimSpace(query) == "" {
		return []models.CityCandidate{}
	}

	candidates, err := s.searcher.FindCities(ctx, query, s.limit)
	if err != nil {
		s.diag.Emit(diagnostics.Event{
			Kind:     diagnostics.SearchFailed,
			Source:   "find",
			Location: query,
			Err:      fmt.Errorf("%w: %v", models.ErrSearchFailed, err),
			Time:     time.Now(),
		})
		return []models.CityCandidate{}
	}

	if len(candidates) > s.limit {
		candidates = candidates[:s.limit]
	}
	if candidates == nil {
		candidates = []models.CityCandidate{}
	}

	s.logger.Debugf("Search %q returned %d candidates", query, len(candidates))
	return candidates
}
