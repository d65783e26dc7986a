// SPDX-License-Identifier: MPL-2.0

package preflight

import "errors"

// FixPermissionsCommand gives the current user ownership of the npm prefix.
const FixPermissionsCommand = "sudo chown -R $(whoami) $(npm config get prefix)/{lib/node_modules,bin,share}"

// ErrRunningAsRoot is returned when the process runs as root and cannot drop
// to the invoking user.
var ErrRunningAsRoot = errors.New("please don't use `sudo` to run the command")
