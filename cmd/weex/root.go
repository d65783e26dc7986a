// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the weex command line entry point.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the root command. Flag parsing is disabled because the
// arguments belong to the core; the bootstrap only peeks at its own flags.
func NewRootCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "weex [command] [args...]",
		Short: "Weex command line tools",
		Long: TitleStyle.Render("weex") + SubtitleStyle.Render(" - Weex command line tools") + `

weex keeps the weex core up to date and hands every command to it.

` + SubtitleStyle.Render("Bootstrap flags:") + `
  --registry <url>   npm registry for the core (env NPM_REGISTRY)
  --compiled         run the compiled core even when sources are present
  -f, --force        force reinstallation of the core

` + SubtitleStyle.Render("Examples:") + `
  weex doctor             Check the development environment
  weex repair             Reinstall the core
  weex completion zsh     Print the zsh completion script`,
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		SilenceUsage:       true,
		RunE:               app.run,
	}
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI and exits the process with the resulting status.
func Execute() {
	app := NewApp(Dependencies{})
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithoutManpage(),
		fang.WithoutCompletions(),
		fang.WithErrorHandler(app.renderError),
	); err != nil {
		os.Exit(exitCode(err))
	}
}
