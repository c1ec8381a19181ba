// Package access implements netdocctl's "access" command group: grant,
// revoke, request, and view pending access requests — spec.md §4.4's
// sharing model. Grouped the way the teacher groups "share permission"
// subcommands under one parent.
package access

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/netdoc/netdoc/pkg/wire"
)

// Cmd is the "access" parent command, added to the root in
// commands/root.go.
var Cmd = &cobra.Command{
	Use:   "access",
	Short: "Grant, revoke, and request file access",
}

func init() {
	Cmd.AddCommand(grantCmd)
	Cmd.AddCommand(revokeCmd)
	Cmd.AddCommand(requestCmd)
	Cmd.AddCommand(requestsCmd)
}

func parsePerm(s string) (wire.Perm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "read":
		return wire.PermRead, nil
	case "write":
		return wire.PermWrite, nil
	case "readwrite", "rw":
		return wire.PermReadWrite, nil
	default:
		return 0, fmt.Errorf("perm must be read, write, or readwrite: %q", s)
	}
}
