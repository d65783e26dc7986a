// SPDX-License-Identifier: MPL-2.0

package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"
)

// interruptGrace is how long the core may take to exit after an interrupt.
const interruptGrace = 5 * time.Second

type (
	// NodeRunner runs `node -e script` with extra environment variables.
	NodeRunner interface {
		RunNode(ctx context.Context, script string, env []string) error
	}

	// Executor loads and starts the core in one Mode.
	Executor interface {
		Mode() Mode
		Execute(ctx context.Context, data CoreData) error
	}

	// SourceExecutor runs the core's TypeScript sources through ts-node.
	SourceExecutor struct {
		CorePath string
		Runner   NodeRunner
	}

	// CompiledExecutor runs the core's compiled JavaScript.
	CompiledExecutor struct {
		CorePath string
		Runner   NodeRunner
	}

	// ExecRunner is the NodeRunner that spawns a real node process with
	// inherited stdio.
	ExecRunner struct {
		Node string
	}
)

// Mode implements Executor.
func (e *SourceExecutor) Mode() Mode { return SourceMode }

// Entry returns the TypeScript entry file.
func (e *SourceExecutor) Entry() string {
	return filepath.Join(e.CorePath, "src", "cli", "cli.ts")
}

// Execute implements Executor.
func (e *SourceExecutor) Execute(ctx context.Context, data CoreData) error {
	entry := e.Entry()
	if !exists(entry) {
		return &LoadError{Mode: SourceMode, Path: entry, Err: ErrEntryPointMissing}
	}
	tsnode := filepath.Join(e.CorePath, "node_modules", "ts-node")
	if !exists(filepath.Join(tsnode, "register")) {
		return &LoadError{Mode: SourceMode, Path: tsnode, Err: ErrTSNodeMissing}
	}

	return run(ctx, e.Runner, data,
		EnvCoreEntry+"="+entry,
		EnvCoreTSNode+"="+tsnode,
		EnvCoreTSConfig+"="+filepath.Join(e.CorePath, "tsconfig.json"),
	)
}

// Mode implements Executor.
func (e *CompiledExecutor) Mode() Mode { return CompiledMode }

// Entry returns the compiled entry file.
func (e *CompiledExecutor) Entry() string {
	return filepath.Join(e.CorePath, "lib", "cli", "cli.js")
}

// Execute implements Executor.
func (e *CompiledExecutor) Execute(ctx context.Context, data CoreData) error {
	entry := e.Entry()
	if !exists(entry) {
		return &LoadError{Mode: CompiledMode, Path: entry, Err: ErrEntryPointMissing}
	}
	return run(ctx, e.Runner, data, EnvCoreEntry+"="+entry)
}

func run(ctx context.Context, runner NodeRunner, data CoreData, env ...string) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encoding core data: %w", err)
	}
	if runner == nil {
		runner = &ExecRunner{}
	}
	return runner.RunNode(ctx, loaderShim, append(env, EnvCoreData+"="+string(payload)))
}

// RunNode implements NodeRunner. A non-zero exit becomes *ExitCodeError.
func (r *ExecRunner) RunNode(ctx context.Context, script string, env []string) error {
	node := r.Node
	if node == "" {
		node = "node"
	}

	cmd := exec.CommandContext(ctx, node, "-e", script)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = append(os.Environ(), env...)
	// The core shares our terminal and sees the same interrupt; give it time
	// to shut down before it is killed.
	cmd.Cancel = func() error { return cmd.Process.Signal(os.Interrupt) }
	cmd.WaitDelay = interruptGrace

	err := cmd.Run()
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitCodeError{Code: exitCode(exitErr)}
	}
	return fmt.Errorf("running node: %w", err)
}

func exitCode(err *exec.ExitError) int {
	if code := err.ExitCode(); code > 0 {
		return code
	}
	if ws, ok := err.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal())
	}
	return 1
}
