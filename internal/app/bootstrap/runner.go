// SPDX-License-Identifier: MPL-2.0

package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/weex-cli/weex/internal/config"
	"github.com/weex-cli/weex/internal/dispatch"
	"github.com/weex-cli/weex/internal/installer"
	"github.com/weex-cli/weex/internal/issue"
	"github.com/weex-cli/weex/internal/resolve"
	"github.com/weex-cli/weex/internal/state"
)

// maxRepairAttempts bounds how often a missing entry point triggers a repair.
const maxRepairAttempts = 1

var (
	// ErrCoreUnavailable is returned when the core still cannot be loaded after repair.
	ErrCoreUnavailable = errors.New("core unavailable")

	// ErrMissingDependency is returned by Run when a required collaborator is nil.
	ErrMissingDependency = errors.New("bootstrap dependency not configured")
)

type (
	// Resolver produces the install decision for a request.
	Resolver interface {
		Resolve(ctx context.Context, req resolve.Request) (resolve.Decision, error)
	}

	// Installer applies install decisions.
	Installer interface {
		Install(ctx context.Context, req installer.Request) (*installer.Result, error)
	}

	// Dispatcher hands the invocation to the core.
	Dispatcher interface {
		Dispatch(ctx context.Context, inv dispatch.Invocation) error
	}

	// Invocation is one parsed command line.
	Invocation struct {
		// Command is the first positional argument, possibly empty.
		Command string
		// Positionals are the positional arguments after Command.
		Positionals []string
	}

	// Outcome is the result of resolving and applying one decision.
	Outcome struct {
		Decision resolve.Decision
		// Applied is true when the installer ran and succeeded.
		Applied bool
		Result  *installer.Result
		// Err is the install failure, if any. It never aborts the run.
		Err error
	}

	// Runner wires the bootstrap steps together.
	Runner struct {
		Config     *config.Bootstrap
		Resolver   Resolver
		Installer  Installer
		Dispatcher Dispatcher
		Logger     *slog.Logger
		// ReadState defaults to state.Read.
		ReadState func(state.Paths) (*state.Local, error)
		// OnApply is called before the installer runs for a non-skip decision.
		OnApply func(resolve.Decision)
		// OnApplied is called after every install attempt.
		OnApplied func(Outcome)
	}
)

// failedCoreInstall reports whether this outcome was a fresh install or a
// core repair that did not install, in which case repairing would repeat the
// same failure.
func (o Outcome) failedCoreInstall() bool {
	if o.Err == nil {
		return false
	}
	return o.Decision.Action == resolve.Install || o.Decision.Action == resolve.RepairInstall
}

// Run executes inv. Install failures are logged and the run continues with
// whatever core is on disk. A core exit status is returned unchanged as
// *dispatch.ExitCodeError.
func (r *Runner) Run(ctx context.Context, inv Invocation) error {
	if r.Config == nil || r.Dispatcher == nil {
		return ErrMissingDependency
	}

	if inv.Command == dispatch.CommandCompletion {
		return r.dispatch(ctx, inv, state.Modules{})
	}

	if r.Resolver == nil || r.Installer == nil {
		return ErrMissingDependency
	}

	local, err := r.readState()
	if err != nil {
		return err
	}

	outcome, err := r.resolveAndApply(ctx, resolve.Request{
		Command:   inv.Command,
		RepairArg: firstOrEmpty(inv.Positionals),
		Local:     local,
	})
	if err != nil {
		return err
	}

	for attempt := 0; ; attempt++ {
		err = r.dispatch(ctx, inv, local.Modules)
		if !errors.Is(err, dispatch.ErrEntryPointMissing) {
			return err
		}
		if attempt >= maxRepairAttempts || outcome.failedCoreInstall() {
			return r.unavailable(err, outcome)
		}

		r.logger().Warn("core entry point missing, repairing", "path", r.Config.CorePath())
		outcome, err = r.resolveAndApply(ctx, resolve.Request{Command: resolve.CommandRepair, Local: local})
		if err != nil {
			return err
		}
		if local, err = r.readState(); err != nil {
			return err
		}
	}
}

func (r *Runner) resolveAndApply(ctx context.Context, req resolve.Request) (Outcome, error) {
	decision, err := r.Resolver.Resolve(ctx, req)
	if err != nil {
		return Outcome{}, fmt.Errorf("resolving core version: %w", err)
	}

	outcome := Outcome{Decision: decision}
	r.logger().Debug("resolved", "decision", decision.String())
	if !decision.NeedsInstall() {
		return outcome, nil
	}

	if r.OnApply != nil {
		r.OnApply(decision)
	}

	res, err := r.Installer.Install(ctx, installer.Request{
		Name:     decision.Name,
		Version:  decision.Version,
		Root:     r.Config.CoreRoot(),
		Trash:    r.Config.Trash(),
		Registry: r.Config.Registry(),
		Force:    r.Config.Force(),
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return outcome, ctxErr
		}
		outcome.Err = err
		r.logger().Debug("core install failed", "decision", decision.String(), "error", err)
	} else {
		outcome.Applied = true
		outcome.Result = res
	}

	if r.OnApplied != nil {
		r.OnApplied(outcome)
	}
	return outcome, nil
}

func (r *Runner) dispatch(ctx context.Context, inv Invocation, modules state.Modules) error {
	return r.Dispatcher.Dispatch(ctx, dispatch.Invocation{
		Command:     inv.Command,
		Positionals: inv.Positionals,
		Compiled:    r.Config.Compiled(),
		Data:        dispatch.NewCoreData(r.Config, modules),
	})
}

func (r *Runner) readState() (*state.Local, error) {
	read := r.ReadState
	if read == nil {
		read = state.Read
	}

	local, err := read(state.Paths{
		CorePackageJSON:  r.Config.CorePackageJSON(),
		ModuleConfigPath: r.Config.ModuleConfigPath(),
	})
	if err != nil {
		var corrupt *state.CorruptStateError
		resource := r.Config.CorePath()
		if errors.As(err, &corrupt) {
			resource = corrupt.Path
		}
		return nil, issue.NewErrorContext().
			WithOperation("read local state").
			WithResource(resource).
			WithSuggestion("Fix or delete the file, then run the command again").
			WithSuggestion("Run 'weex repair' to reinstall the core").
			Wrap(err).
			BuildError()
	}
	if local.Modules == nil {
		local.Modules = state.Modules{}
	}
	if local.Core != nil {
		r.logger().Debug("local core", "name", local.Core.Name, "version", local.Core.Version)
	}
	r.logger().Debug("local modules", "names", local.Modules.Names())
	return local, nil
}

func (r *Runner) unavailable(loadErr error, last Outcome) error {
	ctx := issue.NewErrorContext().
		WithOperation("load weex core").
		WithResource(r.Config.CorePath()).
		WithSuggestion("Run 'weex repair' to reinstall the core")
	if last.Err != nil {
		ctx = ctx.WithSuggestion("Check that " + r.Config.Registry() + " is reachable, or pass --registry")
	}
	return ctx.Wrap(errors.Join(ErrCoreUnavailable, loadErr)).BuildError()
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

func firstOrEmpty(s []string) string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}
