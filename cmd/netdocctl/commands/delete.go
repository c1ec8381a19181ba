package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/netdoc/netdoc/cmd/netdocctl/cmdutil"
	"github.com/netdoc/netdoc/internal/cli/prompt"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a file",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func runDelete(cmd *cobra.Command, args []string) error {
	name := args[0]

	ok, err := prompt.ConfirmWithForce(fmt.Sprintf("Delete %q? This cannot be undone", name), cmdutil.Flags.Force)
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

	if err := c.Delete(cmd.Context(), name); err != nil {
		return err
	}
	fmt.Printf("deleted %q\n", name)
	return nil
}
