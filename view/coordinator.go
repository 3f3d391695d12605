// Package view holds the navigation state of the app: which screen is
// shown, the loaded city, and the user's display choices.
package view

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"city-weather/logger"
	"city-weather/models"
	"city-weather/resolver"
)

// Screen identifies the visible screen
type Screen string

const (
	ScreenSearch Screen = "search"
	ScreenCity   Screen = "city"
)

// ErrSuperseded is returned by an operation whose result was discarded
// because a newer navigation started while it was in flight
var ErrSuperseded = errors.New("superseded by a newer navigation")

// NoDayExpanded is the ExpandedDay value when every forecast day is closed
const NoDayExpanded = -1

// State is a snapshot of everything the screens render from
type State struct {
	Screen        Screen
	City          string
	ViewModel     *models.CityViewModel
	Loading       bool
	Err           error
	LocationErr   error
	Unit          models.TemperatureUnit
	ExpandedDay   int
	LocalTime     time.Time
	SearchQuery   string
	SearchResults []models.CityCandidate

	// SearchResultsFor is the query SearchResults answer
	SearchResultsFor string
}

// CityLoader loads the view model for a city name
type CityLoader interface {
	LoadByCityName(ctx context.Context, name string) (*models.CityViewModel, error)
}

// Locator resolves the device position to a city name
type Locator interface {
	Locate(ctx context.Context, geo resolver.Geolocator) (string, models.Coordinates, error)
}

// SearchSubmitter runs debounced searches with newest-wins delivery
type SearchSubmitter interface {
	Submit(ctx context.Context, query string, deliver func(query string, results []models.CityCandidate))
	Stop()
}

// Coordinator is the only writer of navigation state. Every city load gets
// a token; completions carrying an outdated token are dropped.
type Coordinator struct {
	loader  CityLoader
	locator Locator
	search  SearchSubmitter
	clock   *LocalClock
	logger  logger.Logger

	mu      sync.Mutex
	state   State
	token   uint64
	subs    []func(State)
	pending []State
	notify  chan struct{}
	done    chan struct{}
	closed  bool
}

// NewCoordinator creates a coordinator showing the search screen
func NewCoordinator(loader CityLoader, locator Locator, search SearchSubmitter, clock *LocalClock, log logger.Logger) *Coordinator {
	c := &Coordinator{
		loader:  loader,
		locator: locator,
		search:  search,
		clock:   clock,
		logger:  log.WithField("component", "coordinator"),
		state: State{
			Screen:      ScreenSearch,
			ExpandedDay: NoDayExpanded,
		},
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	go c.dispatch()
	return c
}

// Subscribe registers fn to receive every state change in order. fn runs
// on a dispatch goroutine and may call back into the coordinator.
func (c *Coordinator) Subscribe(fn func(State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs = append(c.subs, fn)
}

// Snapshot returns the current state
func (c *Coordinator) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Navigate opens the city screen for name and loads it. The previous view
// model is cleared before the load starts.
func (c *Coordinator) Navigate(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)

	c.mu.Lock()
	c.token++
	token := c.token
	c.clock.Stop()
	c.state.Screen = ScreenCity
	c.state.City = name
	c.state.ViewModel = nil
	c.state.Loading = true
	c.state.Err = nil
	c.state.LocationErr = nil
	c.state.ExpandedDay = NoDayExpanded
	c.state.LocalTime = time.Time{}
	c.publishLocked()
	c.mu.Unlock()

	c.logger.WithField("city", name).Debug("Navigating to city")
	vm, err := c.loader.LoadByCityName(ctx, name)

	c.mu.Lock()
	defer c.mu.Unlock()
	if token != c.token {
		c.logger.WithField("city", name).Debug("Discarding stale city load")
		return ErrSuperseded
	}

	c.state.Loading = false
	if err != nil {
		c.state.Err = err
		c.publishLocked()
		return err
	}

	vm.TemperatureUnit = c.state.Unit
	c.state.ViewModel = vm
	c.state.LocalTime = c.clock.Start(vm.Current.TimezoneOffsetSeconds, func(t time.Time) {
		c.setLocalTime(token, t)
	})
	c.publishLocked()
	return nil
}

func (c *Coordinator) setLocalTime(token uint64, t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if token != c.token || c.state.Screen != ScreenCity {
		return
	}
	c.state.LocalTime = t
	c.publishLocked()
}

// UseMyLocation resolves the device position to a city and navigates
// there. Failures are kept in LocationErr on the current screen.
func (c *Coordinator) UseMyLocation(ctx context.Context, geo resolver.Geolocator) error {
	c.mu.Lock()
	token := c.token
	c.state.LocationErr = nil
	c.publishLocked()
	c.mu.Unlock()

	name, _, err := c.locator.Locate(ctx, geo)

	c.mu.Lock()
	if token != c.token {
		c.mu.Unlock()
		return ErrSuperseded
	}
	if err != nil {
		c.state.LocationErr = err
		c.publishLocked()
		c.mu.Unlock()
		return err
	}
	c.mu.Unlock()

	return c.Navigate(ctx, name)
}

// Home returns to the search screen and cancels any pending city load
func (c *Coordinator) Home() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.token++
	c.clock.Stop()
	c.state.Screen = ScreenSearch
	c.state.City = ""
	c.state.ViewModel = nil
	c.state.Loading = false
	c.state.Err = nil
	c.state.ExpandedDay = NoDayExpanded
	c.state.LocalTime = time.Time{}
	c.publishLocked()
}

// Search records query and schedules a debounced lookup. Results replace
// the displayed candidates only if no newer query was typed meanwhile.
func (c *Coordinator) Search(ctx context.Context, query string) {
	c.mu.Lock()
	c.state.SearchQuery = query
	c.publishLocked()
	c.mu.Unlock()

	c.search.Submit(ctx, query, func(q string, results []models.CityCandidate) {
		c.mu.Lock()
		defer c.mu.Unlock()
		if q != c.state.SearchQuery {
			return
		}
		c.state.SearchResults = results
		c.state.SearchResultsFor = q
		c.publishLocked()
	})
}

// SetUnit changes the display unit; stored temperatures are untouched
func (c *Coordinator) SetUnit(unit models.TemperatureUnit) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Unit = unit
	if c.state.ViewModel != nil {
		vm := *c.state.ViewModel
		vm.TemperatureUnit = unit
		c.state.ViewModel = &vm
	}
	c.publishLocked()
}

// ToggleDay opens forecast day i, closing any other; toggling the open
// day closes it
func (c *Coordinator) ToggleDay(i int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.ViewModel == nil || i < 0 || i >= len(c.state.ViewModel.ForecastDays) {
		return
	}
	if c.state.ExpandedDay == i {
		c.state.ExpandedDay = NoDayExpanded
	} else {
		c.state.ExpandedDay = i
	}
	c.publishLocked()
}

// Close stops background work
func (c *Coordinator) Close() {
	c.mu.Lock()
	c.token++
	if !c.closed {
		c.closed = true
		close(c.done)
	}
	c.mu.Unlock()
	c.clock.Stop()
	c.search.Stop()
}

func (c *Coordinator) publishLocked() {
	if len(c.subs) == 0 || c.closed {
		return
	}
	c.pending = append(c.pending, c.state.clone())
	select {
	case c.notify <- struct{}{}:
	default:
	}
}

func (c *Coordinator) dispatch() {
	for {
		select {
		case <-c.done:
			return
		case <-c.notify:
		}

		c.mu.Lock()
		batch := c.pending
		c.pending = nil
		subs := append([]func(State){}, c.subs...)
		c.mu.Unlock()

		for _, snap := range batch {
			for _, fn := range subs {
				fn(snap)
			}
		}
	}
}

func (s State) clone() State {
	if s.SearchResults != nil {
		s.SearchResults = append([]models.CityCandidate(nil), s.SearchResults...)
	}
	return s
}
