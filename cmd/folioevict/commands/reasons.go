package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexhholmes/folioevict"
)

var reasonsCmd = &cobra.Command{
	Use:   "reasons",
	Short: "List the rejection reasons a report can contain",
	Run: func(cmd *cobra.Command, args []string) {
		for _, r := range folioevict.AllReasons() {
			fmt.Fprintln(cmd.OutOrStdout(), r)
		}
	},
}
