package control_loop

import (
	"github.com/markusressel/alt2go/internal/configuration"
	"github.com/markusressel/alt2go/internal/util"
)

// PidRegulator computes the field duty directly from the voltage error.
// It does not use the duty of the previous tick.
type PidRegulator struct {
	pidLoop *util.PidLoop
}

// NewPidRegulator creates a PidRegulator with the given gains,
// running at a fixed interval of dt seconds.
func NewPidRegulator(p, i, d, dt float64) *PidRegulator {
	return &PidRegulator{
		pidLoop: util.NewPidLoop(p, i, d, dt),
	}
}

func (r *PidRegulator) Type() string {
	return configuration.RegulatorTypePid
}

// SetTarget changes the voltage setpoint, clearing integral and previous error
func (r *PidRegulator) SetTarget(voltage float64) {
	r.pidLoop.SetTarget(voltage)
}

// Update returns the duty fraction in [0..1] for the measured voltage
func (r *PidRegulator) Update(currentVoltage float64) float64 {
	return r.pidLoop.Update(currentVoltage)
}

func (r *PidRegulator) Reset() {
	r.pidLoop.Reset()
}

func (r *PidRegulator) Cycle(reading Reading, limits Limits, currentDuty int) Result {
	if limits.TargetVoltage != r.pidLoop.Target() {
		r.SetTarget(limits.TargetVoltage)
	}
	fraction := r.Update(reading.Volts)
	return Result{
		Duty:     util.FractionToDuty(fraction),
		Fraction: fraction,
	}
}
