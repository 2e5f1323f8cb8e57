package cmd

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/markusressel/alt2go/cmd/global"
	"github.com/markusressel/alt2go/internal/hwmon"
	"github.com/markusressel/alt2go/internal/ui"
	"github.com/spf13/cobra"
	"github.com/tomlazar/table"
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Detect temperature sensors",
	Long:  `Detects all hwmon temperature inputs and prints them as a list, use platform and index in the sensor configuration`,
	Run: func(cmd *cobra.Command, args []string) {
		chips := hwmon.GetChips()

		for _, chip := range chips {
			if len(chip.Name) <= 0 {
				continue
			}

			ui.Printfln("> %s (platform: %s)", chip.Name, chip.Platform)

			var rows [][]string
			for _, input := range chip.TempInputs {
				_, file := filepath.Split(input.Input)
				labelAndFile := fmt.Sprintf("%s (%s)", input.Label, file)

				rows = append(rows, []string{
					"", strconv.Itoa(input.Index), labelAndFile, formatTemp(input.Value), formatLimit(input.Min), formatLimit(input.Max),
				})
			}

			sensorTable := table.Table{
				Headers: []string{"Sensors", "Index", "Label", "Value", "Min", "Max"},
				Rows:    rows,
			}

			var buf bytes.Buffer
			if err := sensorTable.WriteTable(&buf, global.TableConfig()); err != nil {
				ui.Fatal("Error printing table: %v", err)
			}
			ui.Printfln(buf.String())
		}
	},
}

func formatTemp(value float64) string {
	return strconv.FormatFloat(value, 'f', 1, 64)
}

func formatLimit(value int) string {
	if value < 0 {
		return "N/A"
	}
	return strconv.Itoa(value)
}

func init() {
	rootCmd.AddCommand(detectCmd)
}
