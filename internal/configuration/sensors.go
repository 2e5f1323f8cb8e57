package configuration

type SensorConfig struct {
	ID      string               `json:"id"`
	Ina260  *Ina260SensorConfig  `json:"ina260,omitempty"`
	HwMon   *HwMonSensorConfig   `json:"hwmon,omitempty"`
	File    *FileSensorConfig    `json:"file,omitempty"`
	Cmd     *CmdSensorConfig     `json:"cmd,omitempty"`
	Virtual *VirtualSensorConfig `json:"virtual,omitempty"`
}

const (
	Ina260MeasurementVoltage = "voltage"
	Ina260MeasurementCurrent = "current"
)

type Ina260SensorConfig struct {
	// I2C bus name, empty for the first available bus
	Bus     string `json:"bus"`
	Address uint16 `json:"address"`
	// one of: voltage | current
	Measurement string `json:"measurement"`
}

type HwMonSensorConfig struct {
	Platform  string `json:"platform"`
	Index     int    `json:"index"`
	TempInput string `json:"tempInput"`
}

type FileSensorConfig struct {
	Path string `json:"path"`
	// factor applied to the raw value, 1 if unset
	Scale float64 `json:"scale"`
}

type CmdSensorConfig struct {
	Exec string   `json:"exec"`
	Args []string `json:"args"`
}

type VirtualSensorConfig struct {
	Value float64 `json:"value"`
}
