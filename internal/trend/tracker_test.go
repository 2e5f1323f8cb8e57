package trend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewTracker(t *testing.T) {
	// WHEN
	tracker := NewTracker()

	// THEN
	assert.False(t, tracker.Filled())
	for _, metric := range Metrics {
		assert.Equal(t, 0.0, tracker.Trend(metric))
	}
}

func TestTracker_ConstantInput(t *testing.T) {
	// GIVEN
	tracker := NewTracker()

	// WHEN
	for range WindowSize {
		tracker.Record(60, 14.2, 35)
	}

	// THEN
	assert.True(t, tracker.Filled())
	for _, metric := range Metrics {
		assert.Equal(t, 0.0, tracker.Trend(metric), metric.String())
	}
}

func TestTracker_ConstantIncrement(t *testing.T) {
	// GIVEN
	tracker := NewTracker()

	// WHEN
	for i := range 3 * WindowSize {
		step := float64(i)
		tracker.Record(40+step*0.5, 14.0-step*0.1, 10+step*2)

		if tracker.Filled() {
			// THEN
			assert.InDelta(t, 0.5, tracker.Trend(MetricTemperature), 0.000001)
			assert.InDelta(t, -0.1, tracker.Trend(MetricVoltage), 0.000001)
			assert.InDelta(t, 2.0, tracker.Trend(MetricCurrent), 0.000001)
		}
	}
}

func TestTracker_WarmupTransient(t *testing.T) {
	// GIVEN
	tracker := NewTracker()

	// WHEN
	tracker.Record(60, 14.0, 20)

	// THEN
	// the oldest slot is still zero
	assert.False(t, tracker.Filled())
	assert.Equal(t, 15.0, tracker.Trend(MetricTemperature))
	assert.Equal(t, 3.5, tracker.Trend(MetricVoltage))
	assert.Equal(t, 5.0, tracker.Trend(MetricCurrent))
}

func TestTracker_FilledAfterWindowSize(t *testing.T) {
	// GIVEN
	tracker := NewTracker()

	// WHEN
	for range WindowSize - 1 {
		tracker.Record(1, 1, 1)
	}

	// THEN
	assert.False(t, tracker.Filled())

	// WHEN
	tracker.Record(1, 1, 1)

	// THEN
	assert.True(t, tracker.Filled())
}

func TestTracker_Newest(t *testing.T) {
	// GIVEN
	tracker := NewTracker()

	// WHEN
	tracker.Record(70, 13.9, 42)
	tracker.Record(71, 13.8, 43)

	// THEN
	assert.Equal(t, 71.0, tracker.Newest(MetricTemperature))
	assert.Equal(t, 13.8, tracker.Newest(MetricVoltage))
	assert.Equal(t, 43.0, tracker.Newest(MetricCurrent))
}

func TestTracker_Reset(t *testing.T) {
	// GIVEN
	tracker := NewTracker()
	for i := range 7 {
		tracker.Record(float64(i), float64(i), float64(i))
	}

	// WHEN
	tracker.Reset()

	// THEN
	assert.False(t, tracker.Filled())
	assert.Equal(t, 0, tracker.cursor)
	for _, metric := range Metrics {
		assert.Equal(t, 0.0, tracker.Trend(metric))
		assert.Equal(t, 0.0, tracker.Newest(metric))
	}
}

func TestTracker_Trends(t *testing.T) {
	// GIVEN
	tracker := NewTracker()
	for i := range WindowSize {
		tracker.Record(float64(i), 0, 0)
	}

	// WHEN
	result := tracker.Trends()

	// THEN
	assert.Len(t, result, 3)
	assert.Equal(t, 1.0, result[MetricTemperature])
	assert.Equal(t, 0.0, result[MetricVoltage])
}

func TestMetric_String(t *testing.T) {
	assert.Equal(t, "temperature", MetricTemperature.String())
	assert.Equal(t, "voltage", MetricVoltage.String())
	assert.Equal(t, "current", MetricCurrent.String())
	assert.Equal(t, "unknown", Metric(7).String())
}
