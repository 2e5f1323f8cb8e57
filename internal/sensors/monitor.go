package sensors

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/markusressel/alt2go/internal/configuration"
	"github.com/markusressel/alt2go/internal/ui"
	"github.com/markusressel/alt2go/internal/util"
)

// SensorMonitor keeps the moving average of a sensor up to date,
// for sensors that are not read by a field controller.
type SensorMonitor interface {
	Run(ctx context.Context) error
}

type sensorMonitor struct {
	sensor      Sensor
	pollingRate time.Duration
}

func NewSensorMonitor(sensor Sensor, pollingRate time.Duration) SensorMonitor {
	return sensorMonitor{
		sensor:      sensor,
		pollingRate: pollingRate,
	}
}

func (s sensorMonitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.pollingRate)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := UpdateSensor(s.sensor); err != nil {
				ui.Warning("Error reading sensor %s: %v", s.sensor.GetId(), err)
			}
		}
	}
}

// UpdateSensor reads the current value of a sensor and folds it into its moving average
func UpdateSensor(s Sensor) (float64, error) {
	value, err := s.GetValue()
	if err != nil {
		return 0, err
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("invalid value: %v", value)
	}

	n := configuration.CurrentConfig.SensorRollingWindowSize
	if n <= 0 {
		n = 1
	}
	s.SetMovingAvg(util.UpdateSimpleMovingAvg(s.GetMovingAvg(), n, value))

	return value, nil
}
