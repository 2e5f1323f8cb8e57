package control_loop

import (
	"fmt"
	"time"

	"github.com/markusressel/alt2go/internal/configuration"
	"github.com/markusressel/alt2go/internal/trend"
)

// Event is a diagnostic label emitted by a regulator during a cycle
type Event string

const (
	EventOvertempDerate  Event = "Overtemp Derate"
	EventOvercurrent     Event = "Overcurrent"
	EventTempRisingFast  Event = "Temp rising fast"
	EventAmpRisingFast   Event = "Amp rising fast"
	EventVoltageDropping Event = "Voltage dropping"
)

// Reading holds the sensor values of a single tick
type Reading struct {
	TempC float64
	Volts float64
	Amps  float64
}

// Limits is the snapshot of the configured limits used for a single tick
type Limits struct {
	DerateTemp    float64
	TargetVoltage float64
	CurrentLimit  float64
}

type Result struct {
	// Duty in [0..255]
	Duty int
	// Fraction is Duty mapped to [0..1]
	Fraction float64
	Events   []Event
}

// Regulator produces the next field duty from the readings of a tick.
// Implementations are not safe for concurrent use.
type Regulator interface {
	// Type returns the configuration name of the regulation strategy
	Type() string
	// Cycle advances the regulator by one tick
	Cycle(reading Reading, limits Limits, currentDuty int) Result
	// Reset clears the sample history, e.g. after ticks in which Cycle was not called
	Reset()
}

// TrendReporter is implemented by regulators that track sample trends
type TrendReporter interface {
	Trends() map[trend.Metric]float64
}

// NewRegulator creates the regulator selected by the given configuration
func NewRegulator(config configuration.RegulatorConfig, tickRate time.Duration) (Regulator, error) {
	switch config.Type {
	case configuration.RegulatorTypeThreshold:
		maskWarmup := true
		if config.Threshold != nil {
			maskWarmup = config.Threshold.MaskTrendWarmup.Get()
		}
		return NewThresholdTrendRegulator(maskWarmup), nil
	case configuration.RegulatorTypePid:
		pid := configuration.DefaultPidRegulatorConfig
		if config.Pid != nil {
			pid = *config.Pid
		}
		return NewPidRegulator(pid.P, pid.I, pid.D, tickRate.Seconds()), nil
	default:
		return nil, fmt.Errorf("unknown regulator type: %s", config.Type)
	}
}
