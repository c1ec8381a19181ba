package checkpoint

import (
	"github.com/spf13/cobra"

	"github.com/netdoc/netdoc/cmd/netdocctl/cmdutil"
	"github.com/netdoc/netdoc/internal/cli/output"
)

var listCmd = &cobra.Command{
	Use:   "list <name>",
	Short: "List checkpoints for a file",
	Args:  cobra.ExactArgs(1),
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	c, err := cmdutil.Dial(cmd.Context())
	if err != nil {
		return err
	}
	defer c.Close()

	payload, err := c.ListCheckpoints(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	p, err := cmdutil.Printer(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	return p.Print(output.ParseCheckpointListing(payload))
}
