package field

import (
	"fmt"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var dutyCmd = &cobra.Command{
	Use:   "duty",
	Short: "Get/Set the current duty of the field output ([0..255])",
	Long:  `Sets the duty of the field output directly, bypassing the regulator. Do not use while the daemon is running.`,
	Args:  cobra.RangeArgs(0, 1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pterm.DisableOutput()

		output, err := getOutput()
		if err != nil {
			return err
		}

		if len(args) > 0 {
			duty, err := strconv.Atoi(args[0])
			if err != nil {
				return err
			}
			return output.SetDuty(duty)
		}

		duty, err := output.GetDuty()
		if err != nil {
			return err
		}
		fmt.Printf("%d", duty)
		return nil
	},
}

func init() {
	Command.AddCommand(dutyCmd)
}
