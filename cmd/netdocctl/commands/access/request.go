package access

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/netdoc/netdoc/cmd/netdocctl/cmdutil"
)

var requestCmd = &cobra.Command{
	Use:   "request <name> <read|write>",
	Short: "Request access to a file you don't own",
	Args:  cobra.ExactArgs(2),
	RunE:  runRequest,
}

func runRequest(cmd *cobra.Command, args []string) error {
	perm := strings.ToLower(args[1])
	if perm != "read" && perm != "write" {
		return fmt.Errorf("perm must be read or write: %q", args[1])
	}

	c, err := cmdutil.Dial(cmd.Context())
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.RequestAccess(cmd.Context(), args[0], perm); err != nil {
		return err
	}
	fmt.Printf("requested %s access to %q\n", perm, args[0])
	return nil
}
