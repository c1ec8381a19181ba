package checkpoint

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/netdoc/netdoc/cmd/netdocctl/cmdutil"
	"github.com/netdoc/netdoc/internal/cli/prompt"
)

var revertCmd = &cobra.Command{
	Use:   "revert <name> <tag>",
	Short: "Restore a file's content to a checkpoint, discarding current content",
	Args:  cobra.ExactArgs(2),
	RunE:  runRevert,
}

func runRevert(cmd *cobra.Command, args []string) error {
	name, tag := args[0], args[1]

	ok, err := prompt.ConfirmWithForce(fmt.Sprintf("Revert %q to checkpoint %q? Current content will be lost", name, tag), cmdutil.Flags.Force)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("aborted")
		return nil
	}

	c, err := cmdutil.Dial(cmd.Context())
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.Revert(cmd.Context(), name, tag); err != nil {
		return err
	}
	fmt.Printf("reverted %q to %q\n", name, tag)
	return nil
}
