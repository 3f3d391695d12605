package resolver

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"city-weather/diagnostics"
	"city-weather/logger"
	"city-weather/models"
)

type stubSearcher struct {
	mu      sync.Mutex
	queries []string
	results []models.CityCandidate
	err     error
	delay   time.Duration
}

func (s *stubSearcher) FindCities(ctx context.Context, query string, limit int) ([]models.CityCandidate, error) {
	s.mu.Lock()
	s.queries = append(s.queries, query)
	s.mu.Unlock()
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return s.results, s.err
}

func (s *stubSearcher) Name() string { return "stub" }

func (s *stubSearcher) calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.queries...)
}

func candidates(n int) []models.CityCandidate {
	out := make([]models.CityCandidate, n)
	for i := range out {
		out[i] = models.CityCandidate{Name: "Springfield", CountryCode: "US", Latitude: float64(i), Longitude: -float64(i)}
	}
	return out
}

func TestCitySearch_Search(t *testing.T) {
	t.Run("blank query makes no call", func(t *testing.T) {
		searcher := &stubSearcher{results: candidates(3)}
		s := NewCitySearch(searcher, 10, nil, logger.Discard())

		assert.Empty(t, s.Search(context.Background(), ""))
		assert.Empty(t, s.Search(context.Background(), "   "))
		assert.Empty(t, searcher.calls())
	})

	t.Run("keeps provider order", func(t *testing.T) {
		results := []models.CityCandidate{
			{Name: "Springfield", CountryCode: "US"},
			{Name: "Springs", CountryCode: "ZA"},
		}
		s := NewCitySearch(&stubSearcher{results: results}, 10, nil, logger.Discard())

		got := s.Search(context.Background(), "Spring")
		assert.Equal(t, results, got)
		assert.Equal(t, "Springfield, US", got[0].Label())
	})

	t.Run("truncates to limit", func(t *testing.T) {
		s := NewCitySearch(&stubSearcher{results: candidates(15)}, 10, nil, logger.Discard())
		assert.Len(t, s.Search(context.Background(), "Spring"), 10)
	})

	t.Run("limit above maximum is clamped", func(t *testing.T) {
		s := NewCitySearch(&stubSearcher{results: candidates(12)}, 50, nil, logger.Discard())
		assert.Len(t, s.Search(context.Background(), "Spring"), 10)
	})

	t.Run("failure degrades to empty and is reported", func(t *testing.T) {
		rec := &diagnostics.Recorder{}
		s := NewCitySearch(&stubSearcher{err: errors.New("boom")}, 10, rec, logger.Discard())

		got := s.Search(context.Background(), "Spring")
		assert.NotNil(t, got)
		assert.Empty(t, got)

		events := rec.Events()
		require.Len(t, events, 1)
		assert.Equal(t, diagnostics.SearchFailed, events[0].Kind)
		assert.Equal(t, "Spring", events[0].Location)
		assert.ErrorIs(t, events[0].Err, models.ErrSearchFailed)
	})
}

type delivery struct {
	query   string
	results []models.CityCandidate
}

type collector struct {
	mu  sync.Mutex
	got []delivery
}

func (c *collector) deliver(query string, results []models.CityCandidate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.got = append(c.got, delivery{query: query, results: results})
}

func (c *collector) deliveries() []delivery {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]delivery(nil), c.got...)
}

func TestDebouncedSearch_CoalescesRapidInput(t *testing.T) {
	searcher := &stubSearcher{results: candidates(2)}
	ds := NewDebouncedSearch(NewCitySearch(searcher, 10, nil, logger.Discard()), DefaultDebounce)
	defer ds.Stop()
	out := &collector{}

	ds.Submit(context.Background(), "Lon", out.deliver)
	time.Sleep(50 * time.Millisecond)
	ds.Submit(context.Background(), "London", out.deliver)

	assert.Eventually(t, func() bool { return len(out.deliveries()) == 1 }, time.Second, 10*time.Millisecond)
	time.Sleep(2 * DefaultDebounce)

	assert.Equal(t, []string{"London"}, searcher.calls())
	got := out.deliveries()
	require.Len(t, got, 1)
	assert.Equal(t, "London", got[0].query)
	assert.Len(t, got[0].results, 2)
}

func TestDebouncedSearch_SeparatedInputsBothFire(t *testing.T) {
	searcher := &stubSearcher{results: candidates(1)}
	ds := NewDebouncedSearch(NewCitySearch(searcher, 10, nil, logger.Discard()), 20*time.Millisecond)
	defer ds.Stop()
	out := &collector{}

	ds.Submit(context.Background(), "Par", out.deliver)
	assert.Eventually(t, func() bool { return len(out.deliveries()) == 1 }, time.Second, 5*time.Millisecond)
	ds.Submit(context.Background(), "Paris", out.deliver)
	assert.Eventually(t, func() bool { return len(out.deliveries()) == 2 }, time.Second, 5*time.Millisecond)

	assert.Equal(t, []string{"Par", "Paris"}, searcher.calls())
}

func TestDebouncedSearch_DropsSupersededInFlightResults(t *testing.T) {
	searcher := &stubSearcher{results: candidates(1), delay: 100 * time.Millisecond}
	ds := NewDebouncedSearch(NewCitySearch(searcher, 10, nil, logger.Discard()), 10*time.Millisecond)
	defer ds.Stop()
	out := &collector{}

	ds.Submit(context.Background(), "Ber", out.deliver)
	// let the first search start, then supersede it while in flight
	assert.Eventually(t, func() bool { return len(searcher.calls()) == 1 }, time.Second, 5*time.Millisecond)
	ds.Submit(context.Background(), "Berlin", out.deliver)

	assert.Eventually(t, func() bool { return len(out.deliveries()) == 1 }, time.Second, 10*time.Millisecond)
	time.Sleep(150 * time.Millisecond)

	got := out.deliveries()
	require.Len(t, got, 1)
	assert.Equal(t, "Berlin", got[0].query)
}

func TestDebouncer_StopCancelsPending(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	fired := make(chan string, 1)

	d.Schedule("x", func(input string, token uint64) { fired <- input })
	d.Stop()

	select {
	case <-fired:
		t.Fatal("stopped debouncer fired")
	case <-time.After(60 * time.Millisecond):
	}
}

func TestDebouncer_TokensIncrease(t *testing.T) {
	d := NewDebouncer(time.Hour)
	defer d.Stop()

	first := d.Schedule("a", func(string, uint64) {})
	second := d.Schedule("b", func(string, uint64) {})
	assert.Greater(t, second, first)
	assert.False(t, d.IsCurrent(first))
	assert.True(t, d.IsCurrent(second))
}

type stubWeather struct {
	current models.CurrentConditions
	err     error
	got     []models.Location
}

func (s *stubWeather) GetWeather(ctx context.Context, location models.Location) (models.CurrentConditions, error) {
	s.got = append(s.got, location)
	return s.current, s.err
}

func (s *stubWeather) Name() string { return "stub" }

func TestLocationResolver_Locate(t *testing.T) {
	berlin := models.Coordinates{Latitude: 52.52, Longitude: 13.405}

	t.Run("resolves position to city name", func(t *testing.T) {
		weather := &stubWeather{current: models.CurrentConditions{CityName: "Berlin"}}
		r := NewLocationResolver(weather, logger.Discard())

		name, coords, err := r.Locate(context.Background(), StaticGeolocator(berlin))
		require.NoError(t, err)
		assert.Equal(t, "Berlin", name)
		assert.Equal(t, berlin, coords)

		require.Len(t, weather.got, 1)
		require.NotNil(t, weather.got[0].Coordinates)
		assert.Equal(t, berlin, *weather.got[0].Coordinates)
	})

	t.Run("no capability", func(t *testing.T) {
		weather := &stubWeather{}
		r := NewLocationResolver(weather, logger.Discard())

		_, _, err := r.Locate(context.Background(), nil)
		assert.ErrorIs(t, err, models.ErrGeolocationUnsupported)
		assert.Empty(t, weather.got)
	})

	t.Run("permission denied", func(t *testing.T) {
		r := NewLocationResolver(&stubWeather{}, logger.Discard())
		geo := GeolocatorFunc(func(ctx context.Context) (models.Coordinates, error) {
			return models.Coordinates{}, &PositionError{Message: "User denied Geolocation"}
		})

		_, _, err := r.Locate(context.Background(), geo)
		assert.ErrorIs(t, err, models.ErrGeolocationDenied)
		assert.Contains(t, err.Error(), "User denied Geolocation")

		var pe *PositionError
		assert.False(t, errors.As(err, &pe))
	})

	t.Run("reverse lookup fails", func(t *testing.T) {
		r := NewLocationResolver(&stubWeather{err: errors.New("status 500")}, logger.Discard())

		_, _, err := r.Locate(context.Background(), StaticGeolocator(berlin))
		assert.ErrorIs(t, err, models.ErrWeatherUnavailable)
	})

	t.Run("empty name", func(t *testing.T) {
		r := NewLocationResolver(&stubWeather{}, logger.Discard())

		_, err := r.ResolveFromCoordinates(context.Background(), berlin)
		assert.ErrorIs(t, err, models.ErrWeatherUnavailable)
	})
}
