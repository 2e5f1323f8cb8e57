package outputs

import (
	"fmt"

	"github.com/markusressel/alt2go/internal/configuration"
	"github.com/markusressel/alt2go/internal/util"
)

const (
	MinDuty = 0
	MaxDuty = 255
)

// FieldOutput drives the field coil of the alternator.
// Duty is expressed in [0..255].
type FieldOutput interface {
	GetId() string
	GetLabel() string

	SetDuty(duty int) error
	GetDuty() (int, error)

	// Close switches the field off (best effort) and releases the output
	Close() error
}

// NewFieldOutput opens the output configured for the given field
func NewFieldOutput(config configuration.FieldConfig) (FieldOutput, error) {
	output := config.Output

	if output.Sysfs != nil {
		return openSysfsOutput(config.ID, *output.Sysfs)
	}

	if output.File != nil {
		return &FileOutput{
			ID:     config.ID,
			Config: *output.File,
		}, nil
	}

	if output.Gpio != nil {
		return openGpioOutput(config.ID, *output.Gpio)
	}

	return nil, fmt.Errorf("no matching output type for field: %s", config.ID)
}

func coerceDuty(duty int) int {
	return util.Coerce(duty, MinDuty, MaxDuty)
}
