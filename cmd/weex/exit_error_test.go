// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/weex-cli/weex/internal/app/bootstrap"
	"github.com/weex-cli/weex/internal/dispatch"
	"github.com/weex-cli/weex/internal/installer"
	"github.com/weex-cli/weex/internal/resolve"
)

func TestExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"plain error", errors.New("boom"), 1},
		{"exit error", &ExitError{Code: 4}, 4},
		{"zero exit error", &ExitError{Err: errors.New("boom")}, 1},
		{"core exit code", fmt.Errorf("run: %w", &dispatch.ExitCodeError{Code: 130}), 130},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAnnounceDecision(t *testing.T) {
	t.Parallel()

	tests := []struct {
		decision resolve.Decision
		want     string
	}{
		{resolve.Decision{Action: resolve.Install, Name: "@weex-cli/core", Version: "latest"}, "Start installing Core"},
		{resolve.Decision{Action: resolve.Upgrade, Name: "@weex-cli/core", Version: "2.1.0", From: "2.0.0"}, "Upgrading Core from 2.0.0 -> 2.1.0"},
		{resolve.Decision{Action: resolve.RepairInstall, Name: "@weex-cli/core", Version: "latest"}, "Start repair @weex-cli/core"},
		{resolve.Decision{Action: resolve.Skip}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.decision.Action.String(), func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			announceDecision(&buf, tt.decision)
			if tt.want == "" {
				if buf.Len() != 0 {
					t.Errorf("output = %q, want nothing", buf.String())
				}
				return
			}
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("output = %q, want it to contain %q", buf.String(), tt.want)
			}
		})
	}
}

func TestReportOutcome(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		reportOutcome(&buf, bootstrap.Outcome{
			Applied: true,
			Result:  &installer.Result{Name: "@weex-cli/core", Version: "2.1.0"},
		}, false)
		if !strings.Contains(buf.String(), "@weex-cli/core@2.1.0 installed") {
			t.Errorf("output = %q", buf.String())
		}
	})

	t.Run("rolled back failure", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		reportOutcome(&buf, bootstrap.Outcome{
			Decision: resolve.Decision{Action: resolve.Upgrade, Name: "@weex-cli/core", Version: "2.1.0", From: "2.0.0"},
			Err: &installer.InstallError{
				Name: "@weex-cli/core", Version: "2.1.0", RolledBack: true, Err: errors.New("npm exited 1"),
			},
		}, false)
		out := buf.String()
		for _, want := range []string{"Warning", "weex repair", "previously installed version was restored"} {
			if !strings.Contains(out, want) {
				t.Errorf("output = %q, want it to contain %q", out, want)
			}
		}
	})

	t.Run("nothing applied", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		reportOutcome(&buf, bootstrap.Outcome{Decision: resolve.Decision{Action: resolve.Skip}}, false)
		if buf.Len() != 0 {
			t.Errorf("output = %q, want nothing", buf.String())
		}
	})
}
