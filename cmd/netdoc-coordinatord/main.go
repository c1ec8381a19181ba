// Command netdoc-coordinatord runs the coordinator process described in
// spec.md: the catalog, storage-node registry, and sentence lock table,
// served over the wire protocol plus an admin HTTP surface.
package main

import (
	"fmt"
	"os"

	"github.com/netdoc/netdoc/cmd/netdoc-coordinatord/commands"
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
