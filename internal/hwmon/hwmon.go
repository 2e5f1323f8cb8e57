package hwmon

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"

	"github.com/markusressel/alt2go/internal/configuration"
	"github.com/markusressel/alt2go/internal/util"
	"github.com/md14454/gosensors"
)

const (
	BusTypeI2c  = 0
	BusTypeIsa  = 1
	BusTypePci  = 2
	BusTypeAcpi = 5
)

// HwMonChip is a hwmon device that provides at least one temperature input
type HwMonChip struct {
	Name     string
	Platform string
	Path     string

	TempInputs []*TempInput
}

// TempInput is a single temp*_input of a hwmon device
type TempInput struct {
	Label string
	// 1-based index of the input on its chip
	Index int
	// path of the temp*_input file
	Input string
	// in °C, -1 if unknown
	Max int
	Min int
	// current value in °C at detection time
	Value float64
}

// GetChips returns all detected hwmon devices that have temperature inputs
func GetChips() []*HwMonChip {
	gosensors.Init()
	defer gosensors.Cleanup()
	chips := gosensors.GetDetectedChips()

	var list []*HwMonChip

	for i := 0; i < len(chips); i++ {
		chip := chips[i]

		identifier := computeIdentifier(chip)
		platform := findPlatform(chip.Path)
		if len(platform) <= 0 {
			platform = identifier
		}

		inputs := GetTempInputs(chip)
		if len(inputs) <= 0 {
			continue
		}

		list = append(list, &HwMonChip{
			Name:       identifier,
			Platform:   platform,
			Path:       chip.Path,
			TempInputs: inputs,
		})
	}

	return list
}

func GetTempInputs(chip gosensors.Chip) []*TempInput {
	var inputs []*TempInput

	features := chip.GetFeatures()
	for j := 0; j < len(features); j++ {
		feature := features[j]

		if feature.Type != gosensors.FeatureTypeTemp {
			continue
		}

		subfeatures := feature.GetSubFeatures()

		inputSubFeature, ok := getSubFeature(subfeatures, gosensors.SubFeatureTypeTempInput)
		if !ok {
			continue
		}

		max := -1
		if maxSubFeature, ok := getSubFeature(subfeatures, gosensors.SubFeatureTypeTempMax); ok {
			max = int(maxSubFeature.GetValue())
		}

		min := -1
		if minSubFeature, ok := getSubFeature(subfeatures, gosensors.SubFeatureTypeTempMin); ok {
			min = int(minSubFeature.GetValue())
		}

		inputs = append(inputs, &TempInput{
			Label: util.GetLabel(chip.Path, inputSubFeature.Name),
			Index: len(inputs) + 1,
			Input: filepath.Join(chip.Path, inputSubFeature.Name),
			Max:   max,
			Min:   min,
			Value: inputSubFeature.GetValue(),
		})
	}

	return inputs
}

// UpdateSensorConfigFromHwMonChips resolves the temp*_input path of the given
// sensor config from the detected chips.
func UpdateSensorConfigFromHwMonChips(chips []*HwMonChip, config *configuration.HwMonSensorConfig) error {
	for _, c := range chips {
		matched, err := regexp.MatchString("(?i)"+config.Platform, c.Platform)
		if err != nil {
			return fmt.Errorf("failed to match platform regex '%s' against %s: %w", config.Platform, c.Platform, err)
		}
		if !matched {
			continue
		}
		for _, input := range c.TempInputs {
			if input.Index == config.Index {
				config.TempInput = input.Input
				return nil
			}
		}
	}

	return errors.New("no hwmon sensor matched sensor config")
}

func getSubFeature(subfeatures []gosensors.SubFeature, input gosensors.SubFeatureType) (gosensors.SubFeature, bool) {
	for _, a := range subfeatures {
		if a.Type == input {
			return a, true
		}
	}
	return gosensors.SubFeature{}, false
}

func computeIdentifier(chip gosensors.Chip) (name string) {
	name = chip.Prefix

	devicePath := chip.Path
	if len(name) <= 0 {
		name = util.GetDeviceName(devicePath)
	}

	if len(name) <= 0 {
		_, name = filepath.Split(devicePath)
	}

	identifier := name
	switch chip.Bus.Type {
	case BusTypeI2c:
		identifier = fmt.Sprintf("%s-i2c-%d-%02x", identifier, chip.Bus.Nr, chip.Addr)
	case BusTypeIsa:
		identifier = fmt.Sprintf("%s-isa-%d%03x", identifier, chip.Bus.Nr, chip.Addr)
	case BusTypePci:
		identifier = fmt.Sprintf("%s-pci-%d%03x", identifier, chip.Bus.Nr, chip.Addr)
	case BusTypeAcpi:
		identifier = fmt.Sprintf("%s-acpi-%d", identifier, chip.Bus.Nr)
	}

	return identifier
}

var platformRegex = regexp.MustCompile(`.*/platform/[^/]+`)

func findPlatform(devicePath string) string {
	return platformRegex.FindString(devicePath)
}
