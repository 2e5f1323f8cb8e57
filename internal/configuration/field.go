package configuration

import "github.com/mitchellh/mapstructure"

// FieldConfig describes the alternator field that is regulated
type FieldConfig struct {
	ID      string             `json:"id"`
	Sensors FieldSensorsConfig `json:"sensors"`
	Limits  LimitsConfig       `json:"limits"`
	Output  OutputConfig       `json:"output"`
}

// FieldSensorsConfig references the sensors, by id, that feed the regulator
type FieldSensorsConfig struct {
	Temperature string `json:"temperature"`
	Voltage     string `json:"voltage"`
	Current     string `json:"current"`
}

func (c FieldSensorsConfig) Ids() []string {
	return []string{c.Temperature, c.Voltage, c.Current}
}

type LimitsConfig struct {
	// Voltage the regulator aims for
	TargetVoltage float64 `json:"targetVoltage"`
	// Voltage to hold once the battery is full. Not used by any regulator yet.
	FloatVoltage float64 `json:"floatVoltage"`
	// Maximum alternator output current in amps
	CurrentLimit float64 `json:"currentLimit"`
	// Alternator temperature in °C at which the field is switched off
	DerateTemp float64 `json:"derateTemp"`
}

var DefaultLimits = LimitsConfig{
	TargetVoltage: 14.4,
	FloatVoltage:  13.6,
	CurrentLimit:  100,
	DerateTemp:    82,
}

type OutputConfig struct {
	Sysfs *SysfsOutputConfig `json:"sysfs,omitempty"`
	File  *FileOutputConfig  `json:"file,omitempty"`
	Gpio  *GpioOutputConfig  `json:"gpio,omitempty"`
}

// SysfsOutputConfig is a hardware PWM channel exposed in /sys/class/pwm
type SysfsOutputConfig struct {
	Chip    int `json:"chip"`
	Channel int `json:"channel"`
	// PWM frequency in Hz
	Frequency int `json:"frequency"`
}

type FileOutputConfig struct {
	Path string `json:"path"`
}

// GpioOutputConfig is a digital field enable line of a GPIO chip
type GpioOutputConfig struct {
	Chip string `json:"chip"`
	Line int    `json:"line"`
}

// MergeLimits applies a partial update, given as key/value pairs, to the given limits.
// Values may be numbers or numeric strings, unknown keys are rejected.
func MergeLimits(limits LimitsConfig, update map[string]interface{}) (LimitsConfig, error) {
	result := limits
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  decodeHook(),
		ErrorUnused: true,
		TagName:     "json",
		Result:      &result,
	})
	if err != nil {
		return limits, err
	}
	if err = decoder.Decode(update); err != nil {
		return limits, err
	}
	return result, nil
}
