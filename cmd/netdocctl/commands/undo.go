package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/netdoc/netdoc/cmd/netdocctl/cmdutil"
)

var undoCmd = &cobra.Command{
	Use:   "undo <name>",
	Short: "Revert a file's most recent write",
	Args:  cobra.ExactArgs(1),
	RunE:  runUndo,
}

func runUndo(cmd *cobra.Command, args []string) error {
	c, err := cmdutil.Dial(cmd.Context())
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.Undo(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Printf("undid last write to %q\n", args[0])
	return nil
}
