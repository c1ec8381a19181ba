package checkpoint

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/netdoc/netdoc/cmd/netdocctl/cmdutil"
)

var createCmd = &cobra.Command{
	Use:   "create <name> <tag>",
	Short: "Snapshot a file's current content under a named tag",
	Args:  cobra.ExactArgs(2),
	RunE:  runCreate,
}

func runCreate(cmd *cobra.Command, args []string) error {
	c, err := cmdutil.Dial(cmd.Context())
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.Checkpoint(cmd.Context(), args[0], args[1]); err != nil {
		return err
	}
	fmt.Printf("checkpointed %q as %q\n", args[0], args[1])
	return nil
}
