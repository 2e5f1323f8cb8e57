package configuration

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/markusressel/alt2go/internal/ui"
	"github.com/markusressel/alt2go/internal/util"
	"golang.org/x/exp/slices"
)

func Validate(configPath string) error {
	return validateConfig(&CurrentConfig, configPath)
}

func validateConfig(config *Configuration, path string) error {
	if config.TickRate <= 0 {
		return errors.New("tickRate must be > 0")
	}

	err := validateSensors(config)
	if err != nil {
		return err
	}
	err = validateField(config)
	if err != nil {
		return err
	}
	err = validateRegulator(config)
	if err != nil {
		return err
	}

	if containsCmdSensors(config) {
		if _, err := util.CheckFilePermissionsForExecution(path); err != nil {
			return fmt.Errorf("config file '%s' has invalid permissions: %s", path, err)
		}
	}

	return nil
}

func containsCmdSensors(config *Configuration) bool {
	for _, sensorConfig := range config.Sensors {
		if sensorConfig.Cmd != nil {
			return true
		}
	}

	return false
}

func validateSensors(config *Configuration) error {
	var sensorIds []string
	for _, sensorConfig := range config.Sensors {
		if len(sensorConfig.ID) <= 0 {
			return errors.New("sensor: missing id")
		}
		if slices.Contains(sensorIds, sensorConfig.ID) {
			return fmt.Errorf("duplicate sensor id detected: %s", sensorConfig.ID)
		}
		sensorIds = append(sensorIds, sensorConfig.ID)

		subConfigs := 0
		if sensorConfig.Ina260 != nil {
			subConfigs++
		}
		if sensorConfig.HwMon != nil {
			subConfigs++
		}
		if sensorConfig.File != nil {
			subConfigs++
		}
		if sensorConfig.Cmd != nil {
			subConfigs++
		}
		if sensorConfig.Virtual != nil {
			subConfigs++
		}
		if subConfigs > 1 {
			return fmt.Errorf("sensor %s: only one sensor type can be used per sensor definition block", sensorConfig.ID)
		}
		if subConfigs <= 0 {
			return fmt.Errorf("sensor %s: sub-configuration for sensor is missing, use one of: ina260 | hwmon | file | cmd | virtual", sensorConfig.ID)
		}

		if !slices.Contains(config.Field.Sensors.Ids(), sensorConfig.ID) {
			ui.Warning("Sensor %s is not used by the field regulator", sensorConfig.ID)
		}

		if sensorConfig.Ina260 != nil {
			supported := []string{Ina260MeasurementVoltage, Ina260MeasurementCurrent}
			if !slices.Contains(supported, sensorConfig.Ina260.Measurement) {
				return fmt.Errorf("sensor %s: unsupported measurement '%s', use one of: %s", sensorConfig.ID, sensorConfig.Ina260.Measurement, strings.Join(supported, " | "))
			}
			if sensorConfig.Ina260.Address <= 0 || sensorConfig.Ina260.Address > 0x7F {
				return fmt.Errorf("sensor %s: invalid I2C address 0x%x", sensorConfig.ID, sensorConfig.Ina260.Address)
			}
		}

		if sensorConfig.HwMon != nil {
			if sensorConfig.HwMon.Index <= 0 {
				return fmt.Errorf("sensor %s: invalid index, must be >= 1", sensorConfig.ID)
			}
		}

		if sensorConfig.File != nil {
			if len(sensorConfig.File.Path) <= 0 {
				return fmt.Errorf("sensor %s: no file path provided", sensorConfig.ID)
			}
		}

		if sensorConfig.Cmd != nil {
			if len(sensorConfig.Cmd.Exec) <= 0 {
				return fmt.Errorf("sensor %s: executable is missing", sensorConfig.ID)
			}
		}
	}

	return nil
}

func validateField(config *Configuration) error {
	field := config.Field
	if len(field.ID) <= 0 {
		return errors.New("field: missing id")
	}

	references := map[string]string{
		"temperature": field.Sensors.Temperature,
		"voltage":     field.Sensors.Voltage,
		"current":     field.Sensors.Current,
	}
	for _, kind := range util.SortedKeys(references) {
		sensorId := references[kind]
		if len(sensorId) <= 0 {
			return fmt.Errorf("field %s: missing %s sensor", field.ID, kind)
		}
		if !sensorIdExists(sensorId, config) {
			return fmt.Errorf("field %s: no sensor definition with id '%s' found", field.ID, sensorId)
		}
	}

	if err := ValidateLimits(field.Limits); err != nil {
		return fmt.Errorf("field %s: %w", field.ID, err)
	}

	return validateOutput(field)
}

// ValidateLimits checks the given limits for plausibility
func ValidateLimits(limits LimitsConfig) error {
	for name, value := range map[string]float64{
		"targetVoltage": limits.TargetVoltage,
		"floatVoltage":  limits.FloatVoltage,
		"currentLimit":  limits.CurrentLimit,
		"derateTemp":    limits.DerateTemp,
	} {
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return fmt.Errorf("%s must be a finite number", name)
		}
	}
	if limits.TargetVoltage <= 0 {
		return errors.New("targetVoltage must be > 0")
	}
	if limits.FloatVoltage < 0 {
		return errors.New("floatVoltage must be >= 0")
	}
	if limits.CurrentLimit <= 0 {
		return errors.New("currentLimit must be > 0")
	}
	if limits.DerateTemp <= 0 {
		return errors.New("derateTemp must be > 0")
	}
	return nil
}

func validateOutput(field FieldConfig) error {
	output := field.Output

	subConfigs := 0
	if output.Sysfs != nil {
		subConfigs++
	}
	if output.File != nil {
		subConfigs++
	}
	if output.Gpio != nil {
		subConfigs++
	}
	if subConfigs > 1 {
		return fmt.Errorf("field %s: only one output type can be used", field.ID)
	}
	if subConfigs <= 0 {
		return fmt.Errorf("field %s: output configuration is missing, use one of: sysfs | file | gpio", field.ID)
	}

	if output.Sysfs != nil {
		if output.Sysfs.Chip < 0 || output.Sysfs.Channel < 0 {
			return fmt.Errorf("field %s: invalid pwm chip or channel", field.ID)
		}
		if output.Sysfs.Frequency <= 0 {
			return fmt.Errorf("field %s: pwm frequency must be > 0", field.ID)
		}
	}

	if output.File != nil {
		if len(output.File.Path) <= 0 {
			return fmt.Errorf("field %s: no output file path provided", field.ID)
		}
	}

	if output.Gpio != nil {
		if len(output.Gpio.Chip) <= 0 {
			return fmt.Errorf("field %s: no gpio chip provided", field.ID)
		}
		if output.Gpio.Line < 0 {
			return fmt.Errorf("field %s: invalid gpio line, must be >= 0", field.ID)
		}
	}

	return nil
}

func validateRegulator(config *Configuration) error {
	regulator := config.Regulator
	if !slices.Contains(RegulatorTypes, regulator.Type) {
		return fmt.Errorf("regulator: unsupported type '%s', use one of: %s", regulator.Type, strings.Join(RegulatorTypes, " | "))
	}

	if regulator.Type == RegulatorTypePid && regulator.Pid != nil {
		pid := regulator.Pid
		if pid.P == 0 && pid.I == 0 && pid.D == 0 {
			return errors.New("regulator: all PID constants are zero")
		}
	}

	return nil
}

func sensorIdExists(sensorId string, config *Configuration) bool {
	for _, sensor := range config.Sensors {
		if sensor.ID == sensorId {
			return true
		}
	}

	return false
}
