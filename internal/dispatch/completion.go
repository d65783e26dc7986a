// SPDX-License-Identifier: MPL-2.0

package dispatch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// CommandCompletion is the command that prints a shell completion script.
const CommandCompletion = "completion"

type (
	// Completer writes a completion script for shell.
	Completer interface {
		Complete(ctx context.Context, shell string) error
	}

	// CobraCompleter generates completion scripts from a cobra command tree.
	CobraCompleter struct {
		Root *cobra.Command
		Out  io.Writer
	}
)

// Complete implements Completer.
func (c *CobraCompleter) Complete(_ context.Context, shell string) error {
	out := c.Out
	if out == nil {
		out = os.Stdout
	}

	switch shell {
	case "bash":
		return c.Root.GenBashCompletionV2(out, true)
	case "zsh":
		return c.Root.GenZshCompletion(out)
	case "fish":
		return c.Root.GenFishCompletion(out, true)
	case "powershell", "pwsh":
		return c.Root.GenPowerShellCompletionWithDesc(out)
	default:
		return fmt.Errorf("%w: %q (supported: bash, zsh, fish, powershell)", ErrUnsupportedShell, shell)
	}
}

// DetectShell returns the requested shell, falling back to the basename of
// $SHELL and then bash.
func DetectShell(requested string) string {
	if requested != "" {
		return strings.ToLower(requested)
	}
	if sh := os.Getenv("SHELL"); sh != "" {
		return strings.ToLower(strings.TrimSuffix(filepath.Base(sh), ".exe"))
	}
	return "bash"
}
