// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"slices"
	"testing"

	"github.com/weex-cli/weex/internal/config"
)

func TestParseArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		args        []string
		command     string
		positionals []string
		force       bool
		compiled    bool
		registry    string
	}{
		{name: "empty"},
		{name: "command only", args: []string{"doctor"}, command: "doctor"},
		{
			name:        "unknown flags are skipped",
			args:        []string{"compile", "src", "--watch", "--out=dist"},
			command:     "compile",
			positionals: []string{"src"},
		},
		{
			name:        "unknown flag consumes its value",
			args:        []string{"compile", "--target", "web", "src"},
			command:     "compile",
			positionals: []string{"src"},
		},
		{
			name:     "bootstrap flags",
			args:     []string{"--registry=https://r.example.test", "-f", "--compiled", "run"},
			command:  "run",
			force:    true,
			compiled: true,
			registry: "https://r.example.test",
		},
		{
			name:        "help is claimed silently",
			args:        []string{"repair", "--help", "other-module@2.1.0"},
			command:     "repair",
			positionals: []string{"other-module@2.1.0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p, err := parseArgs(tt.args)
			if err != nil {
				t.Fatalf("parseArgs() error = %v", err)
			}
			if p.command != tt.command {
				t.Errorf("command = %q, want %q", p.command, tt.command)
			}
			if !slices.Equal(p.positionals, tt.positionals) {
				t.Errorf("positionals = %v, want %v", p.positionals, tt.positionals)
			}
			if got, _ := p.flags.GetBool(config.FlagForce); got != tt.force {
				t.Errorf("force = %v, want %v", got, tt.force)
			}
			if got, _ := p.flags.GetBool(config.FlagCompiled); got != tt.compiled {
				t.Errorf("compiled = %v, want %v", got, tt.compiled)
			}
			if got, _ := p.flags.GetString(config.FlagRegistry); got != tt.registry {
				t.Errorf("registry = %q, want %q", got, tt.registry)
			}
		})
	}
}

func TestParseArgs_InvalidBootstrapFlagValue(t *testing.T) {
	t.Parallel()

	if _, err := parseArgs([]string{"--force=maybe"}); err == nil {
		t.Error("parseArgs() expected error for non-boolean --force")
	}
}
