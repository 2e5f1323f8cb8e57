package sensors

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/markusressel/alt2go/internal/configuration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSensor(t *testing.T) {
	var tests = []struct {
		tn       string
		config   configuration.SensorConfig
		wantType Sensor
	}{
		{
			tn:       "ina260",
			config:   configuration.SensorConfig{ID: "a", Ina260: &configuration.Ina260SensorConfig{}},
			wantType: &Ina260Sensor{},
		},
		{
			tn:       "hwmon",
			config:   configuration.SensorConfig{ID: "b", HwMon: &configuration.HwMonSensorConfig{Index: 1}},
			wantType: &HwmonSensor{},
		},
		{
			tn:       "file",
			config:   configuration.SensorConfig{ID: "c", File: &configuration.FileSensorConfig{}},
			wantType: &FileSensor{},
		},
		{
			tn:       "cmd",
			config:   configuration.SensorConfig{ID: "d", Cmd: &configuration.CmdSensorConfig{}},
			wantType: &CmdSensor{},
		},
		{
			tn:       "virtual",
			config:   configuration.SensorConfig{ID: "e", Virtual: &configuration.VirtualSensorConfig{Value: 3}},
			wantType: &VirtualSensor{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.tn, func(t *testing.T) {
			// WHEN
			sensor, err := NewSensor(tt.config)

			// THEN
			require.NoError(t, err)
			assert.IsType(t, tt.wantType, sensor)
			assert.Equal(t, tt.config.ID, sensor.GetId())
			assert.Equal(t, tt.config, sensor.GetConfig())
		})
	}
}

func TestNewSensor_NoSubConfig(t *testing.T) {
	// WHEN
	_, err := NewSensor(configuration.SensorConfig{ID: "empty"})

	// THEN
	assert.EqualError(t, err, "no matching sensor type for sensor: empty")
}

func TestGetSensor(t *testing.T) {
	// GIVEN
	sensor := &VirtualSensor{Config: configuration.SensorConfig{ID: "registered"}}
	SensorMap.Set(sensor.GetId(), sensor)
	defer SensorMap.Remove(sensor.GetId())

	// WHEN
	result, err := GetSensor("registered")
	_, missingErr := GetSensor("missing")

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, sensor, result)
	assert.EqualError(t, missingErr, "sensor not found: missing")
}

func TestHwmonSensor_GetValue(t *testing.T) {
	// GIVEN
	input := filepath.Join(t.TempDir(), "temp1_input")
	require.NoError(t, os.WriteFile(input, []byte("64500\n"), 0644))
	sensor := &HwmonSensor{
		Index: 1,
		Input: input,
		Config: configuration.SensorConfig{
			ID:    "alt_temp",
			HwMon: &configuration.HwMonSensorConfig{Platform: "lm75", Index: 1},
		},
	}

	// WHEN
	value, err := sensor.GetValue()

	// THEN
	require.NoError(t, err)
	assert.Equal(t, 64.5, value)
	assert.Equal(t, "lm75", sensor.GetLabel())
}

func TestHwmonSensor_MissingInput(t *testing.T) {
	// GIVEN
	sensor := &HwmonSensor{
		Input:  filepath.Join(t.TempDir(), "temp9_input"),
		Config: configuration.SensorConfig{ID: "alt_temp"},
	}

	// WHEN
	_, err := sensor.GetValue()

	// THEN
	assert.Error(t, err)
}

func TestFileSensor_GetValue(t *testing.T) {
	// GIVEN
	path := filepath.Join(t.TempDir(), "shunt")
	require.NoError(t, os.WriteFile(path, []byte("1420"), 0644))
	sensor := &FileSensor{
		Config: configuration.SensorConfig{
			ID:   "bus_voltage",
			File: &configuration.FileSensorConfig{Path: path, Scale: 0.01},
		},
	}

	// WHEN
	value, err := sensor.GetValue()

	// THEN
	require.NoError(t, err)
	assert.InDelta(t, 14.2, value, 0.000001)
}

func TestFileSensor_DefaultScale(t *testing.T) {
	// GIVEN
	path := filepath.Join(t.TempDir(), "amps")
	require.NoError(t, os.WriteFile(path, []byte("42.5"), 0644))
	sensor := &FileSensor{
		Config: configuration.SensorConfig{
			ID:   "alt_current",
			File: &configuration.FileSensorConfig{Path: path},
		},
	}

	// WHEN
	value, err := sensor.GetValue()

	// THEN
	require.NoError(t, err)
	assert.Equal(t, 42.5, value)
}

func TestFileSensor_MissingFile(t *testing.T) {
	// GIVEN
	sensor := &FileSensor{
		Config: configuration.SensorConfig{
			ID:   "alt_current",
			File: &configuration.FileSensorConfig{Path: filepath.Join(t.TempDir(), "missing")},
		},
	}

	// WHEN
	_, err := sensor.GetValue()

	// THEN
	assert.Error(t, err)
}

func TestCmdSensor_UnsafeExecutable(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("files created by root are owned by root")
	}

	// GIVEN
	script := filepath.Join(t.TempDir(), "temp.sh")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\necho 42\n"), 0755))
	sensor := &CmdSensor{
		Config: configuration.SensorConfig{
			ID:  "script",
			Cmd: &configuration.CmdSensorConfig{Exec: script},
		},
	}

	// WHEN
	_, err := sensor.GetValue()

	// THEN
	assert.ErrorContains(t, err, "owner is not root")
}

func TestVirtualSensor(t *testing.T) {
	// GIVEN
	sensor := &VirtualSensor{
		Config: configuration.SensorConfig{ID: "virtual"},
		Value:  13.9,
	}

	// WHEN
	value, err := sensor.GetValue()

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, 13.9, value)

	// WHEN
	sensor.SetValue(14.1)
	value, _ = sensor.GetValue()

	// THEN
	assert.Equal(t, 14.1, value)
}

func TestSensor_MovingAvg(t *testing.T) {
	// GIVEN
	sensor := &FileSensor{Config: configuration.SensorConfig{ID: "avg"}}

	// WHEN
	sensor.SetMovingAvg(42)

	// THEN
	assert.Equal(t, 42.0, sensor.GetMovingAvg())
}

func TestUpdateSensor(t *testing.T) {
	// GIVEN
	configuration.CurrentConfig.SensorRollingWindowSize = 4
	sensor := &VirtualSensor{Config: configuration.SensorConfig{ID: "v"}, Value: 12}
	sensor.SetMovingAvg(8)

	// WHEN
	value, err := UpdateSensor(sensor)

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, 12.0, value)
	assert.Equal(t, 9.0, sensor.GetMovingAvg())
}

func TestUpdateSensor_Error(t *testing.T) {
	// GIVEN
	configuration.CurrentConfig.SensorRollingWindowSize = 4
	sensor := &FileSensor{
		Config: configuration.SensorConfig{
			ID:   "missing",
			File: &configuration.FileSensorConfig{Path: filepath.Join(t.TempDir(), "missing")},
		},
	}
	sensor.SetMovingAvg(8)

	// WHEN
	_, err := UpdateSensor(sensor)

	// THEN
	assert.Error(t, err)
	assert.Equal(t, 8.0, sensor.GetMovingAvg())
}

func TestUpdateSensor_NonFiniteValue(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		// GIVEN
		configuration.CurrentConfig.SensorRollingWindowSize = 4
		sensor := &VirtualSensor{Config: configuration.SensorConfig{ID: "v"}, Value: v}
		sensor.SetMovingAvg(8)

		// WHEN
		_, err := UpdateSensor(sensor)

		// THEN
		assert.ErrorContains(t, err, "invalid value")
		assert.Equal(t, 8.0, sensor.GetMovingAvg())
	}
}

func TestSensorMonitor_Run(t *testing.T) {
	// GIVEN
	configuration.CurrentConfig.SensorRollingWindowSize = 1
	sensor := &VirtualSensor{Config: configuration.SensorConfig{ID: "v"}, Value: 5}
	monitor := NewSensorMonitor(sensor, 5*time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	// WHEN
	err := monitor.Run(ctx)

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, 5.0, sensor.GetMovingAvg())
}
