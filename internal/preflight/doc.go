// SPDX-License-Identifier: MPL-2.0

// Package preflight holds the checks that run before any bootstrap work: the
// Node.js prerequisite and the refusal to keep running with root privileges.
package preflight
