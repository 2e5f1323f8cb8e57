package sensors

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/markusressel/alt2go/internal/configuration"
	"github.com/markusressel/alt2go/internal/ui"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

const (
	ina260RegisterCurrent        = 0x01
	ina260RegisterBusVoltage     = 0x02
	ina260RegisterManufacturerId = 0xFE

	ina260ManufacturerId = 0x5449

	// 1.25 mV per bit
	ina260VoltageLsb = 0.00125
	// 1.25 mA per bit
	ina260CurrentLsb = 0.00125
)

var (
	hostInitOnce sync.Once
	hostInitErr  error

	busesMu sync.Mutex
	// opened I2C buses by name, shared by all INA260 sensors
	buses = map[string]i2c.BusCloser{}
)

// Ina260Sensor reads the bus voltage or the current of a TI INA260 power monitor
type Ina260Sensor struct {
	Config configuration.SensorConfig `json:"configuration"`

	mu  sync.Mutex
	dev *i2c.Dev

	movingAvg
}

func (sensor *Ina260Sensor) GetId() string {
	return sensor.Config.ID
}

func (sensor *Ina260Sensor) GetLabel() string {
	c := sensor.Config.Ina260
	return fmt.Sprintf("INA260 %s (0x%02x)", c.Measurement, c.Address)
}

func (sensor *Ina260Sensor) GetConfig() configuration.SensorConfig {
	return sensor.Config
}

func (sensor *Ina260Sensor) GetValue() (float64, error) {
	dev, err := sensor.device()
	if err != nil {
		return 0, fmt.Errorf("sensor %s: %w", sensor.GetId(), err)
	}

	switch sensor.Config.Ina260.Measurement {
	case configuration.Ina260MeasurementVoltage:
		raw, err := readRegister(dev, ina260RegisterBusVoltage)
		if err != nil {
			return 0, fmt.Errorf("sensor %s: %w", sensor.GetId(), err)
		}
		return float64(raw) * ina260VoltageLsb, nil
	case configuration.Ina260MeasurementCurrent:
		raw, err := readRegister(dev, ina260RegisterCurrent)
		if err != nil {
			return 0, fmt.Errorf("sensor %s: %w", sensor.GetId(), err)
		}
		// two's complement, negative when current flows backwards
		return float64(int16(raw)) * ina260CurrentLsb, nil
	default:
		return 0, fmt.Errorf("sensor %s: unsupported measurement: %s", sensor.GetId(), sensor.Config.Ina260.Measurement)
	}
}

// device returns the I2C device of this sensor, opening its bus on first use
func (sensor *Ina260Sensor) device() (*i2c.Dev, error) {
	sensor.mu.Lock()
	defer sensor.mu.Unlock()

	if sensor.dev != nil {
		return sensor.dev, nil
	}

	bus, err := openBus(sensor.Config.Ina260.Bus)
	if err != nil {
		return nil, err
	}
	dev := &i2c.Dev{Addr: sensor.Config.Ina260.Address, Bus: bus}

	id, err := readRegister(dev, ina260RegisterManufacturerId)
	if err != nil {
		return nil, err
	}
	if id != ina260ManufacturerId {
		ui.Warning("Sensor %s: unexpected manufacturer id 0x%04x at address 0x%02x", sensor.GetId(), id, dev.Addr)
	}

	sensor.dev = dev
	return dev, nil
}

func openBus(name string) (i2c.BusCloser, error) {
	hostInitOnce.Do(func() {
		_, hostInitErr = host.Init()
	})
	if hostInitErr != nil {
		return nil, fmt.Errorf("cannot initialize host drivers: %w", hostInitErr)
	}

	busesMu.Lock()
	defer busesMu.Unlock()

	if bus, ok := buses[name]; ok {
		return bus, nil
	}
	bus, err := i2creg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("cannot open I2C bus '%s': %w", name, err)
	}
	buses[name] = bus
	return bus, nil
}

// CloseBuses closes all I2C buses opened by INA260 sensors
func CloseBuses() {
	busesMu.Lock()
	defer busesMu.Unlock()

	for name, bus := range buses {
		if err := bus.Close(); err != nil {
			ui.Warning("Error closing I2C bus '%s': %v", name, err)
		}
		delete(buses, name)
	}
}

// readRegister reads a 16 bit big endian register
func readRegister(dev *i2c.Dev, register byte) (uint16, error) {
	read := make([]byte, 2)
	if err := dev.Tx([]byte{register}, read); err != nil {
		return 0, fmt.Errorf("cannot read register 0x%02x: %w", register, err)
	}
	return binary.BigEndian.Uint16(read), nil
}
