//go:build !linux

package outputs

import (
	"fmt"

	"github.com/markusressel/alt2go/internal/configuration"
)

func openGpioOutput(id string, config configuration.GpioOutputConfig) (FieldOutput, error) {
	return nil, fmt.Errorf("field %s: gpio outputs are only supported on linux", id)
}
