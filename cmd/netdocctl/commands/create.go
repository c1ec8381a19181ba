package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/netdoc/netdoc/cmd/netdocctl/cmdutil"
)

var createCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new file",
	Args:  cobra.ExactArgs(1),
	RunE:  runCreate,
}

var createFolderCmd = &cobra.Command{
	Use:   "createfolder <name>",
	Short: "Create a new folder",
	Args:  cobra.ExactArgs(1),
	RunE:  runCreateFolder,
}

func runCreate(cmd *cobra.Command, args []string) error {
	c, err := cmdutil.Dial(cmd.Context())
	if err != nil {
		return err
	}
	defer c.Close()

	ep, err := c.Create(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	fmt.Printf("created %q, primary=%s", args[0], ep.Primary)
	if ep.Replica != nil {
		fmt.Printf(" replica=%s", ep.Replica)
	}
	fmt.Println()
	return nil
}

func runCreateFolder(cmd *cobra.Command, args []string) error {
	c, err := cmdutil.Dial(cmd.Context())
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.CreateFolder(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Printf("created folder %q\n", args[0])
	return nil
}
