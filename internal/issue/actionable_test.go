// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      *ActionableError
		expected string
	}{
		{
			name:     "operation only",
			err:      &ActionableError{Operation: "install core"},
			expected: "failed to install core",
		},
		{
			name: "operation with resource",
			err: &ActionableError{
				Operation: "install core",
				Resource:  "@weex-cli/core@1.3.0",
			},
			expected: "failed to install core: @weex-cli/core@1.3.0",
		},
		{
			name: "full context",
			err: &ActionableError{
				Operation: "read local state",
				Resource:  "/home/u/.wx/weex_modules/stores.json",
				Cause:     errors.New("unexpected end of JSON input"),
			},
			expected: "failed to read local state: /home/u/.wx/weex_modules/stores.json: unexpected end of JSON input",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestActionableError_Format(t *testing.T) {
	t.Parallel()

	root := errors.New("connection refused")
	err := NewErrorContext().
		WithOperation("load core").
		WithResource("/home/u/.wx/core").
		WithSuggestion("Run 'weex repair' to reinstall the core").
		WithSuggestion("Check your network connection").
		Wrap(fmt.Errorf("installing: %w", root)).
		Build()

	short := err.Format(false)
	if !strings.Contains(short, "  • Run 'weex repair' to reinstall the core") {
		t.Errorf("Format(false) missing suggestion:\n%s", short)
	}
	if strings.Contains(short, "Error chain:") {
		t.Errorf("Format(false) should not include the error chain:\n%s", short)
	}

	long := err.Format(true)
	if !strings.Contains(long, "Error chain:") || !strings.Contains(long, "2. connection refused") {
		t.Errorf("Format(true) missing error chain:\n%s", long)
	}
}

func TestErrorContext_BuildRequiresOperation(t *testing.T) {
	t.Parallel()

	if got := NewErrorContext().WithResource("x").Build(); got != nil {
		t.Errorf("Build() without operation = %v, want nil", got)
	}
	if got := NewErrorContext().BuildError(); got != nil {
		t.Errorf("BuildError() without operation = %v, want nil", got)
	}
}

func TestActionableError_Unwrap(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("sentinel")
	err := WrapWithOperation(sentinel, "dispatch command")
	if !errors.Is(err, sentinel) {
		t.Error("errors.Is should find the wrapped cause")
	}
	if WrapWithOperation(nil, "noop") != nil {
		t.Error("WrapWithOperation(nil) should return nil")
	}
}
