// SPDX-License-Identifier: MPL-2.0

// Package installer installs a pinned version of an npm package under a private
// root directory. The previously installed copy is parked in a trash directory
// for the duration of the install and restored if anything fails, so a broken
// download never leaves the user without a working core.
//
// Concurrent installs into the same root are not coordinated; the last writer
// wins.
package installer
