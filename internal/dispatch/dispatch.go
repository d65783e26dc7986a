// SPDX-License-Identifier: MPL-2.0

package dispatch

import (
	"context"
	"errors"
	"log/slog"
)

type (
	// Invocation is what the dispatcher runs.
	Invocation struct {
		// Command is the first positional argument, possibly empty.
		Command string
		// Positionals are the positional arguments after Command.
		Positionals []string
		// Compiled forces CompiledMode.
		Compiled bool
		Data     CoreData
	}

	// Dispatcher routes an Invocation to the completer or to a core executor.
	Dispatcher struct {
		Completer Completer
		Runner    NodeRunner
		Logger    *slog.Logger
	}
)

// ErrNoCompleter is returned for completion requests when no Completer is set.
var ErrNoCompleter = errors.New("no completer configured")

// Dispatch runs inv. Missing entry points surface as *LoadError; a failing core
// surfaces as *ExitCodeError.
func (d *Dispatcher) Dispatch(ctx context.Context, inv Invocation) error {
	if inv.Command == CommandCompletion {
		if d.Completer == nil {
			return ErrNoCompleter
		}
		var requested string
		if len(inv.Positionals) > 0 {
			requested = inv.Positionals[0]
		}
		return d.Completer.Complete(ctx, DetectShell(requested))
	}

	executor := d.Executor(inv.Data.CorePath, inv.Compiled)
	d.logger().Debug("dispatching to core", "mode", executor.Mode(), "path", inv.Data.CorePath)
	return executor.Execute(ctx, inv.Data)
}

// Executor returns the strategy for corePath.
func (d *Dispatcher) Executor(corePath string, compiled bool) Executor {
	if SelectMode(corePath, compiled) == SourceMode {
		return &SourceExecutor{CorePath: corePath, Runner: d.Runner}
	}
	return &CompiledExecutor{CorePath: corePath, Runner: d.Runner}
}

func (d *Dispatcher) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}
