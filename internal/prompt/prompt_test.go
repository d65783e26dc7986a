// SPDX-License-Identifier: MPL-2.0

package prompt

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestConfirm_Accessible(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"yes", "y\n", true},
		{"full yes", "yes\n", true},
		{"no", "n\n", false},
		{"uppercase no", "NO\n", false},
		{"empty takes default", "\n", true},
		{"eof takes default", "", true},
		{"retry after invalid input", "maybe\nn\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var out bytes.Buffer
			c := New(
				WithAccessible(true),
				WithInput(strings.NewReader(tt.input)),
				WithOutput(&out),
			)

			got, err := c.Confirm(context.Background(), "Upgrade now?")
			if err != nil {
				t.Fatalf("Confirm() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Confirm() = %v, want %v", got, tt.want)
			}
			if !strings.Contains(out.String(), "Upgrade now?") {
				t.Errorf("prompt output %q does not contain the title", out.String())
			}
		})
	}
}

func TestConfirm_DefaultNo(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	c := New(WithAccessible(true), WithInput(strings.NewReader("\n")), WithOutput(&out))
	c.Default = false

	got, err := c.Confirm(context.Background(), "Proceed?")
	if err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}
	if got {
		t.Error("Confirm() = true, want false")
	}
	if !strings.Contains(out.String(), "[y/N]") {
		t.Errorf("prompt output %q does not show [y/N]", out.String())
	}
}
