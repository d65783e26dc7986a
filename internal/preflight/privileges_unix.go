// SPDX-License-Identifier: MPL-2.0

//go:build darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris

package preflight

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strconv"

	"golang.org/x/sys/unix"
)

var (
	//nolint:gochecknoglobals // Test seam for unix.Geteuid.
	geteuid = unix.Geteuid
	//nolint:gochecknoglobals // Test seam for unix.Setgroups.
	setgroups = unix.Setgroups
	//nolint:gochecknoglobals // Test seam for unix.Setgid.
	setgid = unix.Setgid
	//nolint:gochecknoglobals // Test seam for unix.Setuid.
	setuid = unix.Setuid
)

// DropPrivileges downgrades a root process to the user that invoked sudo.
// With allowSudo the process keeps root and only logs that it did.
//
// A missing, invalid or zero SUDO_UID falls back to the platform's default
// user id (see defaultUID); the group is only changed when SUDO_GID names a
// non-root group. Only a failed setgid/setuid is an error.
func DropPrivileges(allowSudo bool, logger *slog.Logger) error {
	if geteuid() != 0 {
		return nil
	}
	if allowSudo {
		logger.Info("root privileges downgrade skipped")
		return nil
	}

	// Group first; after setuid the process can no longer change it.
	if gid, ok := positiveEnvID("SUDO_GID"); ok {
		if err := setgroups([]int{gid}); err != nil {
			return fmt.Errorf("%w: setgroups: %w", ErrRunningAsRoot, err)
		}
		if err := setgid(gid); err != nil {
			return fmt.Errorf("%w: setgid: %w", ErrRunningAsRoot, err)
		}
	}

	uid, ok := positiveEnvID("SUDO_UID")
	if !ok {
		uid = defaultUID()
		logger.Debug("SUDO_UID not usable, falling back to default user id", "uid", uid)
	}
	if err := setuid(uid); err != nil {
		return fmt.Errorf("%w: setuid: %w", ErrRunningAsRoot, err)
	}

	logger.Debug("root privileges dropped", "uid", uid)
	return nil
}

// positiveEnvID parses key as a user or group id greater than zero.
func positiveEnvID(key string) (int, bool) {
	id, err := strconv.Atoi(os.Getenv(key))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// defaultUID is the id of the first regular user account on this platform.
func defaultUID() int {
	if runtime.GOOS == "darwin" {
		return 501
	}
	return 1000
}
