package regulator

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/guptarohit/asciigraph"
	"github.com/markusressel/alt2go/cmd/global"
	"github.com/markusressel/alt2go/internal/configuration"
	"github.com/markusressel/alt2go/internal/control_loop"
	"github.com/markusressel/alt2go/internal/ui"
	"github.com/markusressel/alt2go/internal/util"
	"github.com/spf13/cobra"
	"github.com/tomlazar/table"
)

var (
	ticks       int
	ambientTemp float64
	restVoltage float64
	maxCurrent  float64
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the configured regulator against a simulated alternator",
	Long:  `Drives the configured regulator with the readings of a simple alternator and battery model and prints the result of every tick.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := configuration.DetectAndReadConfigFile()
		ui.Info("Using configuration file at: %s", configPath)
		configuration.LoadConfig()

		config := configuration.CurrentConfig
		regulator, err := control_loop.NewRegulator(config.Regulator, config.TickRate)
		if err != nil {
			return err
		}

		plant := control_loop.DefaultPlant
		plant.AmbientTemp = ambientTemp
		plant.RestVoltage = restVoltage
		plant.MaxCurrent = maxCurrent

		limits := control_loop.Limits{
			DerateTemp:    config.Field.Limits.DerateTemp,
			TargetVoltage: config.Field.Limits.TargetVoltage,
			CurrentLimit:  config.Field.Limits.CurrentLimit,
		}
		steps := control_loop.Simulate(regulator, limits, &plant, ticks)

		var rows [][]string
		duties := make([]float64, 0, len(steps))
		for _, step := range steps {
			events := make([]string, 0, len(step.Result.Events))
			for _, event := range step.Result.Events {
				events = append(events, string(event))
			}
			rows = append(rows, []string{
				strconv.Itoa(step.Tick),
				fmt.Sprintf("%.1f", step.Reading.TempC),
				fmt.Sprintf("%.2f", step.Reading.Volts),
				fmt.Sprintf("%.1f", step.Reading.Amps),
				strconv.Itoa(step.Result.Duty),
				strings.Join(events, ", "),
			})
			duties = append(duties, float64(step.Result.Duty))
		}

		tab := table.Table{
			Headers: []string{"Tick", "Temp", "Volts", "Amps", "Duty", "Events"},
			Rows:    rows,
		}
		var buf bytes.Buffer
		if err = tab.WriteTable(&buf, global.TableConfig()); err != nil {
			return err
		}
		ui.Printfln(buf.String())

		if len(duties) > 0 {
			caption := fmt.Sprintf("Duty / Tick (%s)", regulator.Type())
			graph := asciigraph.Plot(duties, asciigraph.Height(15), asciigraph.Width(100), asciigraph.Caption(caption))
			ui.Printfln(graph)
			ui.Printfln("Average duty: %.1f", util.Avg(duties))
		}
		return nil
	},
}

func init() {
	simulateCmd.Flags().IntVarP(&ticks, "ticks", "t", 120, "Number of ticks to simulate")
	simulateCmd.Flags().Float64Var(&ambientTemp, "ambient", control_loop.DefaultPlant.AmbientTemp, "Ambient temperature in °C")
	simulateCmd.Flags().Float64Var(&restVoltage, "rest-voltage", control_loop.DefaultPlant.RestVoltage, "Battery voltage without charge current")
	simulateCmd.Flags().Float64Var(&maxCurrent, "max-current", control_loop.DefaultPlant.MaxCurrent, "Alternator current at full field")

	Command.AddCommand(simulateCmd)
}
