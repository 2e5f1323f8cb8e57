package trend

import (
	"github.com/asecurityteam/rolling"
	"github.com/markusressel/alt2go/internal/util"
)

const (
	// WindowSize is the number of samples kept per metric
	WindowSize = 5
	// TickPeriod is the assumed time between two samples, in ticks
	TickPeriod = 1.0
)

type Metric int

const (
	MetricTemperature Metric = iota
	MetricVoltage
	MetricCurrent
)

func (m Metric) String() string {
	switch m {
	case MetricTemperature:
		return "temperature"
	case MetricVoltage:
		return "voltage"
	case MetricCurrent:
		return "current"
	default:
		return "unknown"
	}
}

var Metrics = []Metric{MetricTemperature, MetricVoltage, MetricCurrent}

// Tracker keeps the last WindowSize samples of temperature, voltage and current.
// All windows share one cursor, so slot k of every window belongs to the same tick.
// A Tracker is not safe for concurrent use.
type Tracker struct {
	windows [3]*rolling.PointPolicy
	cursor  int
	records int
}

func NewTracker() *Tracker {
	t := &Tracker{}
	t.Reset()
	return t
}

// Reset zeroes every slot and moves the cursor back to 0.
func (t *Tracker) Reset() {
	for i := range t.windows {
		window := util.CreateRollingWindow(WindowSize)
		// one full lap leaves every slot at 0 and the window offset at 0
		for range WindowSize {
			window.Append(0)
		}
		t.windows[i] = window
	}
	t.cursor = 0
	t.records = 0
}

// Record stores one sample per metric at the cursor and advances the cursor.
func (t *Tracker) Record(tempNow, voltNow, ampNow float64) {
	t.windows[MetricTemperature].Append(tempNow)
	t.windows[MetricVoltage].Append(voltNow)
	t.windows[MetricCurrent].Append(ampNow)
	t.cursor = (t.cursor + 1) % WindowSize
	if t.records < WindowSize {
		t.records++
	}
}

// Trend returns the two-point slope between the newest and the oldest sample
// of the given metric, in units per tick.
func (t *Tracker) Trend(metric Metric) float64 {
	window := t.windows[metric]
	newest := util.GetWindowPoint(window, t.newestSlot())
	oldest := util.GetWindowPoint(window, t.oldestSlot())
	return (newest - oldest) / ((WindowSize - 1) * TickPeriod)
}

// Trends returns the current trend of every metric
func (t *Tracker) Trends() map[Metric]float64 {
	result := make(map[Metric]float64, len(Metrics))
	for _, metric := range Metrics {
		result[metric] = t.Trend(metric)
	}
	return result
}

// Newest returns the sample written by the last Record call
func (t *Tracker) Newest(metric Metric) float64 {
	return util.GetWindowPoint(t.windows[metric], t.newestSlot())
}

// Filled reports whether WindowSize samples were recorded since the last Reset.
// Before that the oldest slots still hold zeros and trends are inflated.
func (t *Tracker) Filled() bool {
	return t.records >= WindowSize
}

func (t *Tracker) newestSlot() int {
	return (t.cursor - 1 + WindowSize) % WindowSize
}

func (t *Tracker) oldestSlot() int {
	return t.cursor % WindowSize
}
