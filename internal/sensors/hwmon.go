package sensors

import (
	"github.com/markusressel/alt2go/internal/configuration"
	"github.com/markusressel/alt2go/internal/util"
)

// HwmonSensor reads a temp*_input file of a hwmon device
type HwmonSensor struct {
	Label  string                     `json:"label"`
	Index  int                        `json:"index"`
	Input  string                     `json:"input"`
	Config configuration.SensorConfig `json:"configuration"`

	movingAvg
}

func (sensor *HwmonSensor) GetId() string {
	return sensor.Config.ID
}

func (sensor *HwmonSensor) GetLabel() string {
	if len(sensor.Label) > 0 {
		return sensor.Label
	}
	return sensor.Config.HwMon.Platform
}

func (sensor *HwmonSensor) GetConfig() configuration.SensorConfig {
	return sensor.Config
}

// GetValue returns the temperature in °C
func (sensor *HwmonSensor) GetValue() (float64, error) {
	integer, err := util.ReadIntFromFile(sensor.Input)
	if err != nil {
		return 0, err
	}
	return float64(integer) / 1000, nil
}
