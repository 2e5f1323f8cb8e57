package sensors

import (
	"fmt"
	"sync"

	"github.com/markusressel/alt2go/internal/configuration"
	cmap "github.com/orcaman/concurrent-map/v2"
)

var (
	SensorMap = cmap.New[Sensor]()
)

type Sensor interface {
	GetId() string
	GetLabel() string

	GetConfig() configuration.SensorConfig

	// GetValue returns the current value of this sensor
	GetValue() (float64, error)

	// GetMovingAvg returns the moving average of this sensor's value
	GetMovingAvg() float64
	SetMovingAvg(avg float64)
}

func NewSensor(config configuration.SensorConfig) (Sensor, error) {
	if config.Ina260 != nil {
		return &Ina260Sensor{
			Config: config,
		}, nil
	}

	if config.HwMon != nil {
		return &HwmonSensor{
			Index:  config.HwMon.Index,
			Input:  config.HwMon.TempInput,
			Config: config,
		}, nil
	}

	if config.File != nil {
		return &FileSensor{
			Config: config,
		}, nil
	}

	if config.Cmd != nil {
		return &CmdSensor{
			Config: config,
		}, nil
	}

	if config.Virtual != nil {
		return &VirtualSensor{
			Config: config,
			Value:  config.Virtual.Value,
		}, nil
	}

	return nil, fmt.Errorf("no matching sensor type for sensor: %s", config.ID)
}

// GetSensor returns the registered sensor with the given id
func GetSensor(id string) (Sensor, error) {
	sensor, ok := SensorMap.Get(id)
	if !ok {
		return nil, fmt.Errorf("sensor not found: %s", id)
	}
	return sensor, nil
}

// movingAvg holds the moving average of a sensor, which is written by
// the sensor's reader and read by the api and statistics.
type movingAvg struct {
	mu    sync.RWMutex
	value float64
}

func (m *movingAvg) GetMovingAvg() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.value
}

func (m *movingAvg) SetMovingAvg(avg float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value = avg
}
