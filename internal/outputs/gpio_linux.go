//go:build linux

package outputs

import (
	"fmt"

	"github.com/markusressel/alt2go/internal/configuration"
	"github.com/warthog618/go-gpiocdev"
)

// GpioOutput switches the field on or off with a GPIO line,
// e.g. a MOSFET or relay in series with the field coil.
// Any duty > 0 switches the line high.
type GpioOutput struct {
	ID     string
	Config configuration.GpioOutputConfig

	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

func openGpioOutput(id string, config configuration.GpioOutputConfig) (FieldOutput, error) {
	chip, err := gpiocdev.NewChip(config.Chip)
	if err != nil {
		return nil, fmt.Errorf("field %s: open gpio chip %s: %w", id, config.Chip, err)
	}
	line, err := chip.RequestLine(config.Line, gpiocdev.AsOutput(0), gpiocdev.WithConsumer("alt2go-field"))
	if err != nil {
		_ = chip.Close()
		return nil, fmt.Errorf("field %s: request gpio line %d: %w", id, config.Line, err)
	}
	return &GpioOutput{
		ID:     id,
		Config: config,
		chip:   chip,
		line:   line,
	}, nil
}

func (o *GpioOutput) GetId() string {
	return o.ID
}

func (o *GpioOutput) GetLabel() string {
	return fmt.Sprintf("%s line %d", o.Config.Chip, o.Config.Line)
}

func (o *GpioOutput) SetDuty(duty int) error {
	if o.line == nil {
		return fmt.Errorf("field %s: gpio line is closed", o.ID)
	}
	return o.line.SetValue(gpioLevel(duty))
}

func (o *GpioOutput) GetDuty() (int, error) {
	if o.line == nil {
		return 0, fmt.Errorf("field %s: gpio line is closed", o.ID)
	}
	value, err := o.line.Value()
	if err != nil {
		return 0, err
	}
	if value > 0 {
		return MaxDuty, nil
	}
	return MinDuty, nil
}

func (o *GpioOutput) Close() error {
	if o.line == nil {
		return nil
	}
	_ = o.line.SetValue(0)
	err := o.line.Close()
	o.line = nil
	if o.chip != nil {
		_ = o.chip.Close()
		o.chip = nil
	}
	return err
}
