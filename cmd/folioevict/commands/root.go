// Package commands implements the folioevict CLI.
package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	// Global flags.
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "folioevict",
	Short: "Predict page cache reclaim of btree metadata folios",
	Long: `folioevict reads a decoded snapshot of a filesystem's btree inode
mapping and predicts, folio by folio, whether reclaim could evict it together
with its extent buffer. It never touches a live kernel; the snapshot is
produced by a separate introspection tool.

Use "folioevict [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

// GetRootCmd returns the root command for testing purposes.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(reasonsCmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
