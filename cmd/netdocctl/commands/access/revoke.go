package access

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/netdoc/netdoc/cmd/netdocctl/cmdutil"
)

var revokeCmd = &cobra.Command{
	Use:   "revoke <name> <user>",
	Short: "Revoke a user's access to a file you own",
	Args:  cobra.ExactArgs(2),
	RunE:  runRevoke,
}

func runRevoke(cmd *cobra.Command, args []string) error {
	c, err := cmdutil.Dial(cmd.Context())
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.RemAccess(cmd.Context(), args[0], args[1]); err != nil {
		return err
	}
	fmt.Printf("revoked %s's access to %q\n", args[1], args[0])
	return nil
}
