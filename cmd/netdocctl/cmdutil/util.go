// Package cmdutil holds the state and helpers every netdocctl subcommand
// package needs without importing the root commands package (which
// would create an import cycle), grounded on the teacher's
// cmd/dittofsctl/cmdutil package.
package cmdutil

import (
	"context"
	"fmt"
	"io"

	"github.com/netdoc/netdoc/internal/cli/output"
	"github.com/netdoc/netdoc/pkg/client"
)

// Flags holds the persistent flag values set by the root command and
// read by every subcommand.
var Flags = struct {
	Server  string
	User    string
	Output  string
	NoColor bool
	Force   bool
}{
	Server: "127.0.0.1:9000",
	Output: "table",
}

// Dial connects and registers a Client for the current Server/User
// flags. Every subcommand calls this once and closes it on return.
func Dial(ctx context.Context) (*client.Client, error) {
	if Flags.User == "" {
		return nil, fmt.Errorf("--user is required")
	}
	c, err := client.Dial(Flags.Server, Flags.User)
	if err != nil {
		return nil, err
	}
	if err := c.Register(ctx); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

// Printer builds an output.Printer writing to w in the configured
// --output/--no-color format.
func Printer(w io.Writer) (*output.Printer, error) {
	format, err := output.ParseFormat(Flags.Output)
	if err != nil {
		return nil, err
	}
	return output.NewPrinter(w, format, !Flags.NoColor), nil
}
