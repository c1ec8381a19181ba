// Package commands implements netdoc-coordinatord's CLI, grounded on the
// teacher's cmd/dfs/commands package (cobra root + start subcommand).
package commands

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	configFile string
)

var rootCmd = &cobra.Command{
	Use:           "netdoc-coordinatord",
	Short:         "netdoc coordinator — metadata, locking, and placement broker",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands and runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to config file (default: ./config.yaml)")
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
}

// GetConfigFile returns the --config flag's value for subcommands.
func GetConfigFile() string {
	return configFile
}

// Exit prints an error to stderr and exits with code 1.
func Exit(format string, args ...any) {
	rootCmd.PrintErrf(format+"\n", args...)
	os.Exit(1)
}
