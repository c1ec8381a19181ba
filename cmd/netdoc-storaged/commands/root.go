// Package commands implements netdoc-storaged's CLI.
package commands

import (
	"github.com/spf13/cobra"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	configFile string
)

var rootCmd = &cobra.Command{
	Use:           "netdoc-storaged",
	Short:         "netdoc storage node — holds file content, undo history, and checkpoints",
	SilenceUsage:  true,
	SilenceErrors: true,
}

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
