package commands

import (
	"github.com/spf13/cobra"

	"github.com/netdoc/netdoc/cmd/netdocctl/cmdutil"
	"github.com/netdoc/netdoc/internal/cli/output"
)

var (
	viewAll  bool
	viewLong bool
)

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "List files visible to the current user",
	Args:  cobra.NoArgs,
	RunE:  runView,
}

func init() {
	viewCmd.Flags().BoolVar(&viewAll, "all", false, "list every file in the catalog, not just the caller's")
	viewCmd.Flags().BoolVar(&viewLong, "long", false, "include owner, word count, and modification time")
}

func runView(cmd *cobra.Command, args []string) error {
	c, err := cmdutil.Dial(cmd.Context())
	if err != nil {
		return err
	}
	defer c.Close()

	var flags []string
	if viewAll {
		flags = append(flags, "all")
	}
	if viewLong {
		flags = append(flags, "long")
	}

	payload, err := c.View(cmd.Context(), flags...)
	if err != nil {
		return err
	}

	p, err := cmdutil.Printer(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	return p.Print(output.ParseFileListing(payload, viewLong))
}
