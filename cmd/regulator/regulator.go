package regulator

import "github.com/spf13/cobra"

var Command = &cobra.Command{
	Use:              "regulator",
	Short:            "Regulator related commands",
	Long:             ``,
	TraverseChildren: true,
}
