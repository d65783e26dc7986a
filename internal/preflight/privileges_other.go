// SPDX-License-Identifier: MPL-2.0

//go:build !(darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris)

package preflight

import "log/slog"

// DropPrivileges is a no-op where there is no root user to drop from.
func DropPrivileges(_ bool, _ *slog.Logger) error {
	return nil
}
