// SPDX-License-Identifier: MPL-2.0

// Package prompt asks the user yes/no questions on the terminal. When stdin is
// not a terminal the question falls back to a line-based accessible prompt
// written to stderr, so it never leaks into captured stdout.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// ErrAborted is returned when the user interrupts the prompt.
var ErrAborted = errors.New("prompt aborted")

type (
	// Confirmer renders yes/no prompts.
	Confirmer struct {
		input      io.Reader
		output     io.Writer
		accessible bool
		// Default is the answer assumed on empty input.
		Default bool
	}

	// Option configures a Confirmer.
	Option func(*Confirmer)
)

// WithInput sets the reader answers come from.
func WithInput(r io.Reader) Option {
	return func(c *Confirmer) { c.input = r }
}

// WithOutput sets where the prompt is rendered.
func WithOutput(w io.Writer) Option {
	return func(c *Confirmer) { c.output = w }
}

// WithAccessible forces the line-based prompt.
func WithAccessible(accessible bool) Option {
	return func(c *Confirmer) { c.accessible = accessible }
}

// New creates a Confirmer reading stdin. Accessible mode is enabled when stdin
// is not a terminal or ACCESSIBLE is set.
func New(opts ...Option) *Confirmer {
	noTTY := !isInputTerminal()
	c := &Confirmer{
		accessible: noTTY || os.Getenv("ACCESSIBLE") != "",
		Default:    true,
	}
	if c.accessible {
		c.output = os.Stderr
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Confirm asks title and reports the answer. Interrupts return ErrAborted.
func (c *Confirmer) Confirm(ctx context.Context, title string) (bool, error) {
	answer := c.Default
	confirm := huh.NewConfirm().
		Title(title).
		Affirmative("Yes").
		Negative("No").
		Value(&answer)

	form := huh.NewForm(huh.NewGroup(confirm)).
		WithAccessible(c.accessible).
		WithShowHelp(false)
	if c.input != nil {
		form = form.WithInput(c.input)
	}
	if c.output != nil {
		form = form.WithOutput(c.output)
	}

	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, ErrAborted
		}
		return false, fmt.Errorf("confirm prompt: %w", err)
	}
	return answer, nil
}

// isInputTerminal reports whether stdin is connected to a terminal.
func isInputTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}
