package sensors

import (
	"fmt"

	"github.com/markusressel/alt2go/internal/configuration"
	"github.com/markusressel/alt2go/internal/util"
)

type FileSensor struct {
	Config configuration.SensorConfig `json:"configuration"`

	movingAvg
}

func (sensor *FileSensor) GetId() string {
	return sensor.Config.ID
}

func (sensor *FileSensor) GetLabel() string {
	return sensor.Config.File.Path
}

func (sensor *FileSensor) GetConfig() configuration.SensorConfig {
	return sensor.Config
}

func (sensor *FileSensor) GetValue() (float64, error) {
	filePath, err := util.ExpandHomeDir(sensor.Config.File.Path)
	if err != nil {
		return 0, err
	}

	value, err := util.ReadFloatFromFile(filePath)
	if err != nil {
		return 0, fmt.Errorf("sensor %s: unable to read value from file %s: %w", sensor.GetId(), filePath, err)
	}

	scale := sensor.Config.File.Scale
	if scale == 0 {
		scale = 1
	}
	return value * scale, nil
}
