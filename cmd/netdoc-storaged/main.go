// Command netdoc-storaged runs a storage node: it holds file bytes,
// undo history, and checkpoints behind a blob store, and registers
// itself with a coordinator at startup.
package main

import (
	"fmt"
	"os"

	"github.com/netdoc/netdoc/cmd/netdoc-storaged/commands"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.Version = version
	commands.Commit = commit
	commands.Date = date

	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
