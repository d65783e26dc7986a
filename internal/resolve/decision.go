// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"fmt"
	"strings"
)

// Action values.
const (
	Skip Action = iota
	Install
	Upgrade
	RepairInstall
)

// VersionLatest is the dist-tag used when no explicit version is requested.
const VersionLatest = "latest"

type (
	// Action is what the bootstrap does with the core before dispatch.
	Action int

	// Decision is the single outcome of a resolution. Name and Version are empty
	// for Skip.
	Decision struct {
		Action  Action
		Name    string
		Version string
		// From is the locally installed version an Upgrade replaces.
		From string
	}

	// RepairTarget is the package a `repair` invocation asks to reinstall.
	RepairTarget struct {
		Name    string
		Version string
	}
)

// String returns the lowercase action name.
func (a Action) String() string {
	switch a {
	case Skip:
		return "skip"
	case Install:
		return "install"
	case Upgrade:
		return "upgrade"
	case RepairInstall:
		return "repair"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// NeedsInstall reports whether the decision requires running the installer.
func (d Decision) NeedsInstall() bool { return d.Action != Skip }

// String renders the decision for logs.
func (d Decision) String() string {
	if d.Action == Skip {
		return d.Action.String()
	}
	if d.Action == Upgrade && d.From != "" {
		return fmt.Sprintf("%s %s %s -> %s", d.Action, d.Name, d.From, d.Version)
	}
	return fmt.Sprintf("%s %s@%s", d.Action, d.Name, d.Version)
}

// String renders the target as name@version.
func (t RepairTarget) String() string { return t.Name + "@" + t.Version }

// ParseRepairTarget parses the optional `repair` argument. An empty argument
// targets the core at "latest". The split happens on the last '@' past the
// first byte so scoped names keep their leading '@'.
func ParseRepairTarget(arg, coreName string) RepairTarget {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return RepairTarget{Name: coreName, Version: VersionLatest}
	}

	i := strings.LastIndex(arg, "@")
	if i <= 0 {
		return RepairTarget{Name: arg, Version: VersionLatest}
	}

	name, version := arg[:i], arg[i+1:]
	if version == "" {
		version = VersionLatest
	}
	return RepairTarget{Name: name, Version: version}
}
