package testingutils

import (
	"path/filepath"

	"github.com/markusressel/alt2go/internal/configuration"
	"github.com/markusressel/alt2go/internal/sensors"
)

const (
	FieldId           = "alternator"
	TemperatureSensor = "alternator_temp"
	VoltageSensor     = "battery_voltage"
	CurrentSensor     = "alternator_current"
)

func VirtualSensorConfig(id string, value float64) configuration.SensorConfig {
	return configuration.SensorConfig{
		ID:      id,
		Virtual: &configuration.VirtualSensorConfig{Value: value},
	}
}

func CreateVirtualSensor(id string, value float64) *sensors.VirtualSensor {
	return &sensors.VirtualSensor{
		Config: VirtualSensorConfig(id, value),
		Value:  value,
	}
}

// CreateFieldConfig returns a field with default limits, that writes its duty to a file in dir
func CreateFieldConfig(dir string) configuration.FieldConfig {
	return configuration.FieldConfig{
		ID: FieldId,
		Sensors: configuration.FieldSensorsConfig{
			Temperature: TemperatureSensor,
			Voltage:     VoltageSensor,
			Current:     CurrentSensor,
		},
		Limits: configuration.DefaultLimits,
		Output: configuration.OutputConfig{
			File: &configuration.FileOutputConfig{Path: filepath.Join(dir, "duty")},
		},
	}
}
