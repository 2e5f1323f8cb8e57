package sensors

import (
	"sync"

	"github.com/markusressel/alt2go/internal/configuration"
)

// VirtualSensor returns a fixed value that can be changed at runtime
type VirtualSensor struct {
	Config configuration.SensorConfig `json:"configuration"`

	mu    sync.RWMutex
	Value float64 `json:"value"`

	movingAvg
}

func (sensor *VirtualSensor) GetId() string {
	return sensor.Config.ID
}

func (sensor *VirtualSensor) GetLabel() string {
	return "Virtual Sensor " + sensor.Config.ID
}

func (sensor *VirtualSensor) GetConfig() configuration.SensorConfig {
	return sensor.Config
}

func (sensor *VirtualSensor) GetValue() (float64, error) {
	sensor.mu.RLock()
	defer sensor.mu.RUnlock()
	return sensor.Value, nil
}

func (sensor *VirtualSensor) SetValue(value float64) {
	sensor.mu.Lock()
	defer sensor.mu.Unlock()
	sensor.Value = value
}
