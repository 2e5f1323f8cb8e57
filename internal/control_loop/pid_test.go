package control_loop

import (
	"testing"
	"time"

	"github.com/markusressel/alt2go/internal/configuration"
	"github.com/stretchr/testify/assert"
)

func TestPid_ClampedToOne(t *testing.T) {
	// GIVEN
	r := NewPidRegulator(10, 0, 0, 1)
	r.SetTarget(14.0)

	// WHEN
	output := r.Update(13.0)

	// THEN
	assert.Equal(t, 1.0, output)
}

func TestPid_Cycle(t *testing.T) {
	// GIVEN
	r := NewPidRegulator(10, 0, 0, 1)

	// WHEN
	result := r.Cycle(
		Reading{TempC: 40, Volts: 13.0, Amps: 20},
		Limits{DerateTemp: 82, TargetVoltage: 14.0, CurrentLimit: 100},
		0,
	)

	// THEN
	assert.Equal(t, 1.0, result.Fraction)
	assert.Equal(t, 255, result.Duty)
	assert.Empty(t, result.Events)
}

func TestPid_CycleMapsFractionToDuty(t *testing.T) {
	// GIVEN
	r := NewPidRegulator(1, 0, 0, 1)
	limits := Limits{DerateTemp: 82, TargetVoltage: 14.0, CurrentLimit: 100}

	// WHEN
	result := r.Cycle(Reading{Volts: 13.5}, limits, 0)

	// THEN
	assert.InDelta(t, 0.5, result.Fraction, 0.000001)
	assert.Equal(t, 128, result.Duty)
}

func TestPid_CycleIgnoresPreviousDuty(t *testing.T) {
	// GIVEN
	a := NewPidRegulator(0.5, 0, 0, 1)
	b := NewPidRegulator(0.5, 0, 0, 1)
	limits := Limits{TargetVoltage: 14.0}

	// WHEN
	resultA := a.Cycle(Reading{Volts: 13.8}, limits, 0)
	resultB := b.Cycle(Reading{Volts: 13.8}, limits, 200)

	// THEN
	assert.Equal(t, resultA, resultB)
}

func TestPid_SetTargetResetsMemory(t *testing.T) {
	// GIVEN
	r := NewPidRegulator(0, 0.1, 0, 1)
	r.SetTarget(14.0)
	r.Update(13.0)
	r.Update(13.0)
	accumulated := r.Update(13.0)
	assert.InDelta(t, 0.3, accumulated, 0.000001)

	// WHEN
	r.SetTarget(14.0)
	output := r.Update(13.0)

	// THEN
	assert.InDelta(t, 0.1, output, 0.000001)
}

func TestPid_CycleResetsOnTargetChange(t *testing.T) {
	// GIVEN
	r := NewPidRegulator(0, 0.1, 0, 1)
	limits := Limits{TargetVoltage: 14.0}
	r.Cycle(Reading{Volts: 13.0}, limits, 0)
	r.Cycle(Reading{Volts: 13.0}, limits, 0)
	result := r.Cycle(Reading{Volts: 13.0}, limits, 0)
	assert.InDelta(t, 0.3, result.Fraction, 0.000001)

	// WHEN
	limits.TargetVoltage = 14.5
	result = r.Cycle(Reading{Volts: 13.5}, limits, 0)

	// THEN
	assert.InDelta(t, 0.1, result.Fraction, 0.000001)
}

func TestPid_Reset(t *testing.T) {
	// GIVEN
	r := NewPidRegulator(0, 0.1, 0, 1)
	limits := Limits{TargetVoltage: 14.0}
	r.Cycle(Reading{Volts: 13.0}, limits, 0)
	r.Cycle(Reading{Volts: 13.0}, limits, 0)

	// WHEN
	r.Reset()
	result := r.Cycle(Reading{Volts: 13.0}, limits, 0)

	// THEN
	assert.InDelta(t, 0.1, result.Fraction, 0.000001)
}

func TestPid_ExtremeInputsStayInRange(t *testing.T) {
	// GIVEN
	r := NewPidRegulator(3, 1, 0.5, 1)
	limits := Limits{TargetVoltage: 14.4}

	for _, volts := range []float64{-1e9, 0, 14.4, 1e9, -1e9} {
		// WHEN
		result := r.Cycle(Reading{Volts: volts}, limits, 0)

		// THEN
		assert.GreaterOrEqual(t, result.Fraction, 0.0)
		assert.LessOrEqual(t, result.Fraction, 1.0)
		assert.GreaterOrEqual(t, result.Duty, MinDuty)
		assert.LessOrEqual(t, result.Duty, MaxDuty)
	}
}

func TestNewRegulator_Threshold(t *testing.T) {
	// GIVEN
	config := configuration.RegulatorConfig{
		Type: configuration.RegulatorTypeThreshold,
	}

	// WHEN
	regulator, err := NewRegulator(config, time.Second)

	// THEN
	assert.NoError(t, err)
	assert.IsType(t, &ThresholdTrendRegulator{}, regulator)
	assert.Equal(t, configuration.RegulatorTypeThreshold, regulator.Type())
	assert.True(t, regulator.(*ThresholdTrendRegulator).maskWarmup)
	assert.Implements(t, (*TrendReporter)(nil), regulator)
}

func TestNewRegulator_ThresholdWithoutWarmupMask(t *testing.T) {
	// GIVEN
	thresholdConfig := &configuration.ThresholdRegulatorConfig{}
	thresholdConfig.MaskTrendWarmup.SetOverride(false)
	config := configuration.RegulatorConfig{
		Type:      configuration.RegulatorTypeThreshold,
		Threshold: thresholdConfig,
	}

	// WHEN
	regulator, err := NewRegulator(config, time.Second)

	// THEN
	assert.NoError(t, err)
	assert.False(t, regulator.(*ThresholdTrendRegulator).maskWarmup)
}

func TestNewRegulator_Pid(t *testing.T) {
	// GIVEN
	config := configuration.RegulatorConfig{
		Type: configuration.RegulatorTypePid,
		Pid:  &configuration.PidRegulatorConfig{P: 10, I: 0, D: 0},
	}

	// WHEN
	regulator, err := NewRegulator(config, 500*time.Millisecond)

	// THEN
	assert.NoError(t, err)
	assert.IsType(t, &PidRegulator{}, regulator)
	assert.Equal(t, configuration.RegulatorTypePid, regulator.Type())

	result := regulator.Cycle(Reading{Volts: 13.0}, Limits{TargetVoltage: 14.0}, 0)
	assert.Equal(t, 255, result.Duty)
}

func TestNewRegulator_PidDefaults(t *testing.T) {
	// GIVEN
	config := configuration.RegulatorConfig{
		Type: configuration.RegulatorTypePid,
	}

	// WHEN
	regulator, err := NewRegulator(config, time.Second)

	// THEN
	assert.NoError(t, err)
	assert.IsType(t, &PidRegulator{}, regulator)
}

func TestNewRegulator_Unknown(t *testing.T) {
	// GIVEN
	config := configuration.RegulatorConfig{
		Type: "fuzzy",
	}

	// WHEN
	regulator, err := NewRegulator(config, time.Second)

	// THEN
	assert.Nil(t, regulator)
	assert.EqualError(t, err, "unknown regulator type: fuzzy")
}
