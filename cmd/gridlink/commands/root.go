// Package commands implements the gridlink CLI: template inspection, code
// generation, datagram decoding, and a live circuit probe.
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
	Use:   "gridlink",
	Short: "gridlink - Second Life / OpenSimulator UDP client toolkit",
	Long: `gridlink implements the simulator UDP protocol family in pure Go:
the message-template codec, circuit reliability layer, and the structured
data (LLSD) serializations used by capabilities and the event queue.

Use "gridlink [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/gridlink/config.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(templateCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(decodeCmd)
	rootCmd.AddCommand(connectCmd)
}
