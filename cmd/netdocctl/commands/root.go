// Package commands implements netdocctl, the interactive client for
// netdoc, grounded on the teacher's cmd/dfsctl/commands package (cobra
// root with persistent --server/--output flags, one subcommand package
// per resource).
package commands

import (
	"github.com/spf13/cobra"

	accesscmd "github.com/netdoc/netdoc/cmd/netdocctl/commands/access"
	checkpointcmd "github.com/netdoc/netdoc/cmd/netdocctl/commands/checkpoint"
	"github.com/netdoc/netdoc/cmd/netdocctl/cmdutil"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:           "netdocctl",
	Short:         "netdocctl — interactive client for a netdoc cluster",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands and runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cmdutil.Flags.Server, "server", "127.0.0.1:9000", "coordinator address")
	rootCmd.PersistentFlags().StringVar(&cmdutil.Flags.User, "user", "", "username to act as (required)")
	rootCmd.PersistentFlags().StringVarP(&cmdutil.Flags.Output, "output", "o", "table", "output format (table|json|yaml)")
	rootCmd.PersistentFlags().BoolVar(&cmdutil.Flags.NoColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&cmdutil.Flags.Force, "force", "f", false, "skip confirmation prompts")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(createFolderCmd)
	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(undoCmd)
	rootCmd.AddCommand(accesscmd.Cmd)
	rootCmd.AddCommand(checkpointcmd.Cmd)
}
