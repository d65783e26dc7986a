// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/weex-cli/weex/internal/app/bootstrap"
	"github.com/weex-cli/weex/internal/config"
	"github.com/weex-cli/weex/internal/dispatch"
	"github.com/weex-cli/weex/internal/installer"
	"github.com/weex-cli/weex/internal/issue"
	"github.com/weex-cli/weex/internal/preflight"
	"github.com/weex-cli/weex/internal/prompt"
	"github.com/weex-cli/weex/internal/registry"
	"github.com/weex-cli/weex/internal/resolve"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

type (
	// BootstrapRunner runs one parsed invocation.
	BootstrapRunner interface {
		Run(ctx context.Context, inv bootstrap.Invocation) error
	}

	// RunnerEnv is what a BootstrapRunner is built from.
	RunnerEnv struct {
		Config  *config.Bootstrap
		Root    *cobra.Command
		Logger  *slog.Logger
		Stdout  io.Writer
		Stderr  io.Writer
		Verbose bool
	}

	// App is the composition root of the CLI. It owns the preflight checks and
	// builds the bootstrap runner for each invocation.
	App struct {
		stdout         io.Writer
		stderr         io.Writer
		homeDir        string
		checkNode      func(context.Context) (string, error)
		dropPrivileges func(allowSudo bool, logger *slog.Logger) error
		newRunner      func(RunnerEnv) BootstrapRunner
		verbose        bool
	}

	// Dependencies defines the injection points for building an App. Nil fields
	// are replaced with production defaults by NewApp.
	Dependencies struct {
		Stdout io.Writer
		Stderr io.Writer
		// HomeDir overrides the user home directory lookup.
		HomeDir        string
		CheckNode      func(context.Context) (string, error)
		DropPrivileges func(allowSudo bool, logger *slog.Logger) error
		NewRunner      func(RunnerEnv) BootstrapRunner
	}
)

// NewApp creates an App, filling unset dependencies with production defaults.
func NewApp(deps Dependencies) *App {
	a := &App{
		stdout:         deps.Stdout,
		stderr:         deps.Stderr,
		homeDir:        deps.HomeDir,
		checkNode:      deps.CheckNode,
		dropPrivileges: deps.DropPrivileges,
		newRunner:      deps.NewRunner,
	}
	if a.stdout == nil {
		a.stdout = os.Stdout
	}
	if a.stderr == nil {
		a.stderr = os.Stderr
	}
	if a.checkNode == nil {
		a.checkNode = preflight.CheckNode
	}
	if a.dropPrivileges == nil {
		a.dropPrivileges = preflight.DropPrivileges
	}
	if a.newRunner == nil {
		a.newRunner = newBootstrapRunner
	}
	return a
}

// run is the root command's RunE. args is the raw argument vector.
func (a *App) run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	parsed, err := parseArgs(args)
	if err != nil {
		return &ExitError{Code: 1, Err: err}
	}

	cfg, cfgErr := config.Resolve(config.ResolveOptions{Flags: parsed.flags, Args: args, HomeDir: a.homeDir})
	if cfg == nil {
		return &ExitError{Code: 1, Err: cfgErr}
	}

	logger := newLogger(a.stderr, cfg.LogLevel())
	a.verbose = cfg.LogLevel() == config.LogLevelDebug
	if cfgErr != nil {
		_, _ = fmt.Fprintln(a.stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(cfgErr, a.verbose))
	}

	if parsed.command != dispatch.CommandCompletion {
		if err := a.preflightNode(ctx, logger); err != nil {
			return err
		}
	}
	if err := a.dropPrivileges(cfg.AllowSudo(), logger); err != nil {
		return &ExitError{Code: 1, Err: issue.NewErrorContext().
			WithOperation("downgrade root privileges").
			WithSuggestion("If you can't run without sudo, you may have problems during installation").
			WithSuggestion("Try " + CmdStyle.Render(preflight.FixPermissionsCommand) + " to empower your folders").
			WithSuggestion("Set " + config.EnvAllowSudo + "=1 to keep running as root").
			Wrap(err).
			BuildError()}
	}

	runner := a.newRunner(RunnerEnv{
		Config:  cfg,
		Root:    cmd.Root(),
		Logger:  logger,
		Stdout:  a.stdout,
		Stderr:  a.stderr,
		Verbose: a.verbose,
	})
	err = runner.Run(ctx, bootstrap.Invocation{Command: parsed.command, Positionals: parsed.positionals})
	if err == nil {
		return nil
	}

	var coreErr *dispatch.ExitCodeError
	if errors.As(err, &coreErr) {
		// The core already reported its own failure.
		return &ExitError{Code: coreErr.Code}
	}
	return &ExitError{Code: 1, Err: err}
}

func (a *App) preflightNode(ctx context.Context, logger *slog.Logger) error {
	version, err := a.checkNode(ctx)
	if err == nil {
		logger.Debug("node.js detected", "version", version)
		return nil
	}
	if errors.Is(err, preflight.ErrNodeTooOld) {
		return &ExitError{Code: 1, Err: err}
	}
	return &ExitError{Code: 1, Err: issue.NewErrorContext().
		WithOperation("find Node.js").
		WithSuggestion("Install Node.js 7.6 or newer and make sure `node` is on your PATH").
		Wrap(err).
		BuildError()}
}

// renderError is the fang error handler. Exit errors without a cause were
// already reported and print nothing.
func (a *App) renderError(w io.Writer, _ fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return
	}
	_, _ = fmt.Fprintln(w, ErrorStyle.Render("ERROR: ")+formatErrorForDisplay(err, a.verbose))
	renderIssue(w, classifyError(err))
}

// newBootstrapRunner wires the production collaborators.
func newBootstrapRunner(env RunnerEnv) BootstrapRunner {
	cfg := env.Config
	client := registry.NewClient(cfg.Registry(),
		registry.WithTimeout(cfg.RegistryTimeout()),
		registry.WithUserAgent(config.AppName+"/"+Version),
	)
	env.Logger.Debug("using registry", "url", client.BaseURL(), "timeout", cfg.RegistryTimeout())

	return &bootstrap.Runner{
		Config: cfg,
		Resolver: &resolve.Engine{
			CoreName:    cfg.CoreName(),
			CoreVersion: cfg.CoreVersion(),
			UpdateCheck: cfg.UpdateCheck(),
			Fetcher:     client,
			Confirmer:   prompt.New(prompt.WithOutput(env.Stderr)),
			Logger:      env.Logger,
		},
		Installer: installer.New(
			installer.WithResolver(client),
			installer.WithOutput(env.Stderr, env.Stderr),
			installer.WithLogger(env.Logger),
		),
		Dispatcher: &dispatch.Dispatcher{
			Completer: &dispatch.CobraCompleter{Root: env.Root, Out: env.Stdout},
			Logger:    env.Logger,
		},
		Logger:    env.Logger,
		OnApply:   func(d resolve.Decision) { announceDecision(env.Stderr, d) },
		OnApplied: func(o bootstrap.Outcome) { reportOutcome(env.Stderr, o, env.Verbose) },
	}
}
