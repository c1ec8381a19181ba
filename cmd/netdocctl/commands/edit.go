package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/netdoc/netdoc/cmd/netdocctl/cmdutil"
	"github.com/netdoc/netdoc/internal/cli/prompt"
)

var editCmd = &cobra.Command{
	Use:   "edit <name> <sentence-index> [replacement]",
	Short: "Replace one sentence of a file's content",
	Long: `Run the full two-phase write protocol for a single sentence: acquire
the write lock, fetch current content, splice in the replacement, write
it back, and commit the lock (spec.md §4.3).

If replacement is omitted, edit prompts for it interactively.`,
	Args: cobra.RangeArgs(2, 3),
	RunE: runEdit,
}

func runEdit(cmd *cobra.Command, args []string) error {
	name := args[0]
	index, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("sentence index must be an integer: %w", err)
	}

	var replacement string
	if len(args) == 3 {
		replacement = args[2]
	} else {
		replacement, err = prompt.InputRequired(fmt.Sprintf("Replacement for sentence %d", index))
		if err != nil {
			return err
		}
	}

	c, err := cmdutil.Dial(cmd.Context())
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.EditSentence(cmd.Context(), name, index, replacement); err != nil {
		return err
	}
	fmt.Printf("updated sentence %d of %q\n", index, name)
	return nil
}
