// Package checkpoint implements netdocctl's "checkpoint" command group:
// create, list, and revert named snapshots (spec.md §4.5).
package checkpoint

import (
	"github.com/spf13/cobra"
)

// Cmd is the "checkpoint" parent command, added to the root in
// commands/root.go.
var Cmd = &cobra.Command{
	Use:     "checkpoint",
	Short:   "Create, list, and revert file checkpoints",
	Aliases: []string{"cp"},
}

func init() {
	Cmd.AddCommand(createCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(revertCmd)
}
