package access

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/netdoc/netdoc/cmd/netdocctl/cmdutil"
)

var grantCmd = &cobra.Command{
	Use:   "grant <name> <user> <read|write|readwrite>",
	Short: "Grant a user access to a file you own",
	Args:  cobra.ExactArgs(3),
	RunE:  runGrant,
}

func runGrant(cmd *cobra.Command, args []string) error {
	perm, err := parsePerm(args[2])
	if err != nil {
		return err
	}

	c, err := cmdutil.Dial(cmd.Context())
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.AddAccess(cmd.Context(), args[0], args[1], perm); err != nil {
		return err
	}
	fmt.Printf("granted %s %s on %q\n", args[1], args[2], args[0])
	return nil
}
