package access

import (
	"github.com/spf13/cobra"

	"github.com/netdoc/netdoc/cmd/netdocctl/cmdutil"
	"github.com/netdoc/netdoc/internal/cli/output"
)

var requestsCmd = &cobra.Command{
	Use:   "requests",
	Short: "List pending access requests against files you own",
	Args:  cobra.NoArgs,
	RunE:  runRequests,
}

func runRequests(cmd *cobra.Command, args []string) error {
	c, err := cmdutil.Dial(cmd.Context())
	if err != nil {
		return err
	}
	defer c.Close()

	payload, err := c.ViewRequests(cmd.Context())
	if err != nil {
		return err
	}

	p, err := cmdutil.Printer(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	return p.Print(output.ParseAccessRequestListing(payload))
}
