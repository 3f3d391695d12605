package resolver

import (
	"context"
	"sync"
	"time"

	"city-weather/models"
)

// DefaultDebounce is the quiet period applied to search input
const DefaultDebounce = 150 * time.Millisecond

// Debouncer coalesces rapid inputs: only the last input scheduled within
// the quiet period fires. Every input gets a monotonically increasing token
// so late completions can be recognised as stale.
type Debouncer struct {
	delay   time.Duration
	mu      sync.Mutex
	timer   *time.Timer
	seq     uint64
	stopped bool
}

// NewDebouncer creates a debouncer with the given quiet period
func NewDebouncer(delay time.Duration) *Debouncer {
	if delay < 0 {
		delay = 0
	}
	return &Debouncer{delay: delay}
}

// Schedule replaces any pending input with this one. onReady runs on its
// own goroutine once the quiet period passes without a newer Schedule.
// The returned token identifies this input.
func (d *Debouncer) Schedule(input string, onReady func(input string, token uint64)) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq++
	token := d.seq
	if d.stopped {
		return token
	}
	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = time.AfterFunc(d.delay, func() {
		// a timer that already fired cannot be stopped, so re-check here
		if !d.IsCurrent(token) {
			return
		}
		onReady(input, token)
	})
	return token
}

// IsCurrent reports whether token belongs to the latest scheduled input
func (d *Debouncer) IsCurrent(token uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return !d.stopped && token == d.seq
}

// Stop cancels any pending input; later Schedule calls never fire
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
}

// DebouncedSearch runs a CitySearch behind a Debouncer with
// newest-input-wins delivery
type DebouncedSearch struct {
	search    *CitySearch
	debouncer *Debouncer
}

// NewDebouncedSearch creates a debounced search with the given quiet period
func NewDebouncedSearch(search *CitySearch, delay time.Duration) *DebouncedSearch {
	return &DebouncedSearch{
		search:    search,
		debouncer: NewDebouncer(delay),
	}
}

// Submit schedules query. deliver is called with the results only if no
// newer query was submitted while this one waited or was in flight.
func (s *DebouncedSearch) Submit(ctx context.Context, query string, deliver func(query string, results []models.CityCandidate)) {
	s.debouncer.Schedule(query, func(input string, token uint64) {
		results := s.search.Search(ctx, input)
		if !s.debouncer.IsCurrent(token) {
			return
		}
		deliver(input, results)
	})
}

// Stop cancels pending input
func (s *DebouncedSearch) Stop() {
	s.debouncer.Stop()
}
