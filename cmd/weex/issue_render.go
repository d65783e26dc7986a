// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/weex-cli/weex/internal/app/bootstrap"
	"github.com/weex-cli/weex/internal/config"
	"github.com/weex-cli/weex/internal/issue"
	"github.com/weex-cli/weex/internal/preflight"
	"github.com/weex-cli/weex/internal/state"

	"golang.org/x/term"
)

// classifyError maps a fatal error to its issue catalog entry. Zero means the
// error has no extended help.
func classifyError(err error) issue.Id {
	switch {
	case errors.Is(err, preflight.ErrNodeTooOld):
		return issue.NodeTooOldId
	case errors.Is(err, preflight.ErrNodeNotFound):
		return issue.NodeNotFoundId
	case errors.Is(err, preflight.ErrRunningAsRoot):
		return issue.RunningAsRootId
	case errors.Is(err, config.ErrNoHomeDir):
		return issue.HomeNotFoundId
	case errors.Is(err, state.ErrCorruptState):
		return issue.CorruptStateId
	case errors.Is(err, bootstrap.ErrCoreUnavailable):
		return issue.CoreUnavailableId
	default:
		return 0
	}
}

// renderIssue writes the catalog help for id to w. Render failures are logged
// and otherwise ignored; the error line was already printed.
func renderIssue(w io.Writer, id issue.Id) {
	if id == 0 {
		return
	}
	entry := issue.Get(id)
	if entry == nil {
		return
	}
	rendered, err := entry.Render(glamourStyle(w))
	if err != nil {
		slog.Warn("failed to render issue catalog entry", "issueID", id, "error", err)
		return
	}
	_, _ = fmt.Fprint(w, rendered)
}

// glamourStyle picks a colored style for terminals and plain text otherwise.
func glamourStyle(w io.Writer) string {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return "dark"
	}
	return "notty"
}
