// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/weex-cli/weex/internal/app/bootstrap"
	"github.com/weex-cli/weex/internal/installer"
	"github.com/weex-cli/weex/internal/issue"
	"github.com/weex-cli/weex/internal/resolve"
)

// announceDecision prints what the bootstrap is about to do with the core.
func announceDecision(w io.Writer, d resolve.Decision) {
	var msg string
	switch d.Action {
	case resolve.Install:
		msg = "Start installing Core, please wait ..."
	case resolve.Upgrade:
		msg = fmt.Sprintf("Upgrading Core from %s -> %s, please wait ...",
			DimStyle.Render(d.From), SuccessStyle.Render(d.Version))
	case resolve.RepairInstall:
		msg = fmt.Sprintf("Start repair %s, please wait ...", d.Name)
	case resolve.Skip:
		return
	}
	_, _ = fmt.Fprintln(w, WarningStyle.Render(msg))
}

// reportOutcome prints the result of an install attempt.
func reportOutcome(w io.Writer, o bootstrap.Outcome, verbose bool) {
	if o.Applied && o.Result != nil {
		_, _ = fmt.Fprintln(w, SuccessStyle.Render(fmt.Sprintf("%s@%s installed", o.Result.Name, o.Result.Version)))
		return
	}
	if o.Err == nil {
		return
	}

	ctx := issue.NewErrorContext().
		WithOperation(o.Decision.Action.String() + " core").
		WithResource(o.Decision.Name + "@" + o.Decision.Version).
		WithSuggestion("Run " + CmdStyle.Render("weex repair") + " to try again").
		WithSuggestion("Use --registry or NPM_REGISTRY to pick a reachable registry")
	var ie *installer.InstallError
	if errors.As(o.Err, &ie) && ie.RolledBack {
		ctx = ctx.WithSuggestion("The previously installed version was restored")
	}
	_, _ = fmt.Fprintln(w, WarningStyle.Render("Warning: ")+ctx.Wrap(o.Err).Build().Format(verbose))
	if verbose {
		renderIssue(w, issue.CoreInstallFailedId)
	}
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
