package field

import (
	"github.com/markusressel/alt2go/internal/configuration"
	"github.com/markusressel/alt2go/internal/outputs"
	"github.com/markusressel/alt2go/internal/ui"
	"github.com/spf13/cobra"
)

var Command = &cobra.Command{
	Use:              "field",
	Short:            "Field output related commands",
	Long:             ``,
	TraverseChildren: true,
}

func getOutput() (outputs.FieldOutput, error) {
	configPath := configuration.DetectAndReadConfigFile()
	ui.Info("Using configuration file at: %s", configPath)
	configuration.LoadConfig()
	err := configuration.Validate(configPath)
	if err != nil {
		ui.FatalWithoutStacktrace("%v", err)
	}

	return outputs.NewFieldOutput(configuration.CurrentConfig.Field)
}
