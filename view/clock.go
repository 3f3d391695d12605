package view

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"city-weather/logger"
	"city-weather/units"
)

// DefaultClockInterval is how often the displayed local time is refreshed
const DefaultClockInterval = time.Minute

// LocalClock keeps a city's wall-clock time fresh while its view is open
type LocalClock struct {
	mu       sync.Mutex
	interval time.Duration
	now      func() time.Time
	logger   logger.Logger

	cron    *cron.Cron
	running bool
	gen     uint64
}

// NewLocalClock creates a stopped clock. Intervals under a second are
// raised to one second.
func NewLocalClock(interval time.Duration, log logger.Logger) *LocalClock {
	if interval < time.Second {
		interval = time.Second
	}
	return &LocalClock{
		interval: interval,
		now:      time.Now,
		logger:   log.WithField("component", "local_clock"),
	}
}

// Start returns the current local time for offsetSeconds and then calls
// onTick with a recomputed value every interval until Stop. Starting a
// running clock restarts it for the new offset.
func (c *LocalClock) Start(offsetSeconds int, onTick func(time.Time)) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked()
	c.gen++
	gen := c.gen

	c.cron = cron.New()
	schedule := fmt.Sprintf("@every %s", c.interval)
	if _, err := c.cron.AddFunc(schedule, func() { c.tick(gen, offsetSeconds, onTick) }); err != nil {
		c.logger.Errorf("Failed to schedule clock %q: %v", schedule, err)
	} else {
		c.cron.Start()
		c.running = true
		c.logger.Debugf("Clock started for offset %ds", offsetSeconds)
	}

	return units.LocalTimeFromOffset(offsetSeconds, c.now())
}

func (c *LocalClock) tick(gen uint64, offsetSeconds int, onTick func(time.Time)) {
	c.mu.Lock()
	current := c.running && c.gen == gen
	now := c.now()
	c.mu.Unlock()
	if !current {
		return
	}
	onTick(units.LocalTimeFromOffset(offsetSeconds, now))
}

// Stop cancels the refresh. It does not wait for a tick in progress; such
// a tick is dropped.
func (c *LocalClock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

func (c *LocalClock) stopLocked() {
	if c.cron != nil {
		c.cron.Stop()
		c.cron = nil
	}
	if c.running {
		c.logger.Debug("Clock stopped")
	}
	c.running = false
	c.gen++
}

// Running reports whether the clock is scheduled
func (c *LocalClock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}
