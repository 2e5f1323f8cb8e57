package outputs

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/markusressel/alt2go/internal/configuration"
	"github.com/markusressel/alt2go/internal/util"
)

var pwmSysfsBase = "/sys/class/pwm"

// SysfsOutput drives a hardware PWM channel via /sys/class/pwm.
//
// On a Raspberry Pi the channel has to be enabled first,
// e.g. with `dtoverlay=pwm-2chan`.
type SysfsOutput struct {
	ID     string
	Config configuration.SysfsOutputConfig

	chipPath string // /sys/class/pwm/pwmchipN
	pwmPath  string // /sys/class/pwm/pwmchipN/pwmM

	periodNS int
}

func openSysfsOutput(id string, config configuration.SysfsOutputConfig) (*SysfsOutput, error) {
	if config.Frequency <= 0 {
		return nil, fmt.Errorf("field %s: invalid pwm frequency %d", id, config.Frequency)
	}

	chipPath := filepath.Join(pwmSysfsBase, fmt.Sprintf("pwmchip%d", config.Chip))
	o := &SysfsOutput{
		ID:       id,
		Config:   config,
		chipPath: chipPath,
		pwmPath:  filepath.Join(chipPath, fmt.Sprintf("pwm%d", config.Channel)),
		periodNS: int(time.Second.Nanoseconds() / int64(config.Frequency)),
	}

	if err := o.ensureExported(); err != nil {
		return nil, err
	}

	// duty_cycle must never exceed the period, so reset it before changing the period
	_ = o.write("enable", 0)
	if err := o.write("duty_cycle", 0); err != nil {
		return nil, err
	}
	if err := o.write("period", o.periodNS); err != nil {
		return nil, err
	}
	if err := o.write("enable", 1); err != nil {
		return nil, err
	}

	return o, nil
}

func (o *SysfsOutput) GetId() string {
	return o.ID
}

func (o *SysfsOutput) GetLabel() string {
	return o.pwmPath
}

func (o *SysfsOutput) SetDuty(duty int) error {
	dutyNS := int(math.Round(float64(o.periodNS) * util.DutyToFraction(duty)))
	return o.write("duty_cycle", dutyNS)
}

func (o *SysfsOutput) GetDuty() (int, error) {
	dutyNS, err := util.ReadIntFromFile(filepath.Join(o.pwmPath, "duty_cycle"))
	if err != nil {
		return 0, err
	}
	return util.FractionToDuty(float64(dutyNS) / float64(o.periodNS)), nil
}

func (o *SysfsOutput) Close() error {
	err := o.write("duty_cycle", 0)
	return errors.Join(err, o.write("enable", 0))
}

func (o *SysfsOutput) ensureExported() error {
	if _, err := os.Stat(o.pwmPath); err == nil {
		return nil
	}

	exportPath := filepath.Join(o.chipPath, "export")
	if err := util.WriteIntToFile(o.Config.Channel, exportPath); err != nil {
		// exported by someone else in the meantime
		if _, statErr := os.Stat(o.pwmPath); statErr == nil {
			return nil
		}
		return fmt.Errorf("field %s: export pwm: %w", o.ID, err)
	}

	// the kernel creates the channel directory asynchronously
	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(o.pwmPath); err == nil {
			return nil
		}
		time.Sleep(10 * time.Millisecond)
	}
	if _, err := os.Stat(o.pwmPath); err != nil {
		return fmt.Errorf("field %s: pwm path not created after export: %w", o.ID, err)
	}
	return nil
}

// write sets a pwm attribute. Right after an export udev may still be adjusting
// the permissions of the new attributes, so permission errors are retried for a while.
func (o *SysfsOutput) write(name string, value int) error {
	path := filepath.Join(o.pwmPath, name)
	deadline := time.Now().Add(2 * time.Second)
	for {
		err := util.WriteIntToFile(value, path)
		if err == nil {
			return nil
		}
		if time.Now().Before(deadline) && isRetryableSysfsErr(err) {
			time.Sleep(25 * time.Millisecond)
			continue
		}
		return fmt.Errorf("field %s: write %s=%s: %w", o.ID, name, strconv.Itoa(value), err)
	}
}

func isRetryableSysfsErr(err error) bool {
	return os.IsPermission(err) || errors.Is(err, syscall.EACCES) || errors.Is(err, syscall.EPERM)
}
