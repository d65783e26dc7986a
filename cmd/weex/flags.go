// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"

	"github.com/weex-cli/weex/internal/config"

	"github.com/spf13/pflag"
)

// parsedArgs is the bootstrap's view of the command line. The raw argument
// vector still goes to the core untouched.
type parsedArgs struct {
	flags       *pflag.FlagSet
	command     string
	positionals []string
}

// parseArgs extracts the bootstrap flags and positionals from args. Flags the
// bootstrap does not know belong to the core and are skipped; --help is
// claimed silently so the core can answer it.
func parseArgs(args []string) (*parsedArgs, error) {
	fs := pflag.NewFlagSet(config.AppName, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	fs.ParseErrorsAllowlist.UnknownFlags = true
	config.RegisterFlags(fs)
	fs.BoolP("help", "h", false, "")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parsing arguments: %w", err)
	}

	p := &parsedArgs{flags: fs}
	if rest := fs.Args(); len(rest) > 0 {
		p.command = rest[0]
		p.positionals = rest[1:]
	}
	return p, nil
}
