// Package diagnostics carries non-fatal events (swallowed air-quality
// failures, degraded searches) to an observability sink.
package diagnostics

import (
	"sync"
	"time"

	"city-weather/logger"
)

// Kind classifies a diagnostic event
type Kind string

const (
	AirQualityUnavailable Kind = "air_quality_unavailable"
	SearchFailed          Kind = "search_failed"
)

// Event is a structured non-fatal occurrence
type Event struct {
	Kind     Kind
	Source   string // endpoint or component that failed
	Location string
	LoadID   string
	Err      error
	Time     time.Time
}

// Sink receives diagnostic events. Implementations must be safe for
// concurrent use.
type Sink interface {
	Emit(Event)
}

// LogSink writes events as structured warnings
type LogSink struct {
	logger logger.Logger
}

// NewLogSink creates a sink backed by the given logger
func NewLogSink(log logger.Logger) *LogSink {
	return &LogSink{logger: log.WithField("component", "diagnostics")}
}

// Emit logs the event at warn level
func (s *LogSink) Emit(e Event) {
	fields := map[string]interface{}{
		"kind":     string(e.Kind),
		"source":   e.Source,
		"location": e.Location,
	}
	if e.LoadID != "" {
		fields["load_id"] = e.LoadID
	}
	if e.Err != nil {
		fields["error"] = e.Err.Error()
	}
	s.logger.WithFields(fields).Warn("non-fatal failure")
}

// Recorder keeps events in memory
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Emit stores the event
func (r *Recorder) Emit(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of everything recorded so far
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Nop drops every event
type Nop struct{}

// Emit does nothing
func (Nop) Emit(Event) {}

var (
	_ Sink = (*LogSink)(nil)
	_ Sink = (*Recorder)(nil)
	_ Sink = Nop{}
)
