package diagnostics

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"city-weather/logger"
)

func TestLogSink_EmitsStructuredWarning(t *testing.T) {
	var buf bytes.Buffer
	sink := NewLogSink(logger.NewWithWriter("info", &buf))

	sink.Emit(Event{
		Kind:     AirQualityUnavailable,
		Source:   "air_pollution",
		Location: "51.5,-0.12",
		LoadID:   "abc",
		Err:      errors.New("connection refused"),
	})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warning", entry["level"])
	assert.Equal(t, "air_quality_unavailable", entry["kind"])
	assert.Equal(t, "air_pollution", entry["source"])
	assert.Equal(t, "abc", entry["load_id"])
	assert.Equal(t, "connection refused", entry["error"])
	assert.Equal(t, "diagnostics", entry["component"])
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	r.Emit(Event{Kind: SearchFailed})
	r.Emit(Event{Kind: AirQualityUnavailable})

	events := r.Events()
	require.Len(t, events, 2)
	assert.Equal(t, SearchFailed, events[0].Kind)

	events[0].Kind = "mutated"
	assert.Equal(t, SearchFailed, r.Events()[0].Kind)
}
