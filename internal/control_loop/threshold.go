package control_loop

import (
	"github.com/markusressel/alt2go/internal/configuration"
	"github.com/markusressel/alt2go/internal/trend"
	"github.com/markusressel/alt2go/internal/util"
)

const (
	MinDuty = 0
	MaxDuty = 255

	overcurrentStep = 10
	voltageStep     = 5
	tempTrendStep   = 10
	ampTrendStep    = 5
	voltTrendStep   = 5

	// band around the target voltage, wider below the target
	voltageBandBelow = 0.4
	voltageBandAbove = 0.2

	tempTrendLimit = 1.0
	ampTrendLimit  = 10.0
	voltTrendLimit = -0.3
)

// ThresholdTrendRegulator nudges the previous duty by fixed steps, based on
// instantaneous limits and the trends of the last samples.
type ThresholdTrendRegulator struct {
	tracker *trend.Tracker
	// skip the trend rules until the tracker was filled once
	maskWarmup bool
}

func NewThresholdTrendRegulator(maskWarmup bool) *ThresholdTrendRegulator {
	return &ThresholdTrendRegulator{
		tracker:    trend.NewTracker(),
		maskWarmup: maskWarmup,
	}
}

func (r *ThresholdTrendRegulator) Type() string {
	return configuration.RegulatorTypeThreshold
}

func (r *ThresholdTrendRegulator) Cycle(reading Reading, limits Limits, currentDuty int) Result {
	duty, events := r.Tick(
		reading.TempC, reading.Volts, reading.Amps,
		limits.DerateTemp, limits.TargetVoltage, limits.CurrentLimit,
		currentDuty,
	)
	return Result{
		Duty:     duty,
		Fraction: util.DutyToFraction(duty),
		Events:   events,
	}
}

// Tick records the readings and applies all rules in order to currentDuty.
func (r *ThresholdTrendRegulator) Tick(
	tempC, volts, amps float64,
	tempLimit, voltTarget, ampLimit float64,
	currentDuty int,
) (int, []Event) {
	r.tracker.Record(tempC, volts, amps)

	var events []Event
	duty := clampDuty(currentDuty)

	if tempC >= tempLimit {
		return MinDuty, []Event{EventOvertempDerate}
	}

	if amps > ampLimit {
		duty = clampDuty(duty - overcurrentStep)
		events = append(events, EventOvercurrent)
	}

	if volts < voltTarget-voltageBandBelow {
		duty = clampDuty(duty + voltageStep)
	} else if volts > voltTarget+voltageBandAbove {
		duty = clampDuty(duty - voltageStep)
	}

	if r.maskWarmup && !r.tracker.Filled() {
		return duty, events
	}

	if r.tracker.Trend(trend.MetricTemperature) > tempTrendLimit {
		duty = clampDuty(duty - tempTrendStep)
		events = append(events, EventTempRisingFast)
	}

	if r.tracker.Trend(trend.MetricCurrent) > ampTrendLimit {
		duty = clampDuty(duty - ampTrendStep)
		events = append(events, EventAmpRisingFast)
	}

	if r.tracker.Trend(trend.MetricVoltage) < voltTrendLimit {
		duty = clampDuty(duty - voltTrendStep)
		events = append(events, EventVoltageDropping)
	}

	return duty, events
}

// Reset clears the sample history, trend rules are masked again until it is filled
// when warm-up masking is enabled.
func (r *ThresholdTrendRegulator) Reset() {
	r.tracker.Reset()
}

// Trends returns the current trends of the sample history
func (r *ThresholdTrendRegulator) Trends() map[trend.Metric]float64 {
	return r.tracker.Trends()
}

func clampDuty(duty int) int {
	return util.Coerce(duty, MinDuty, MaxDuty)
}
