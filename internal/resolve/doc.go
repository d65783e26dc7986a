// SPDX-License-Identifier: MPL-2.0

// Package resolve decides, once per invocation, whether the core package must be
// installed, upgraded or repaired before dispatch. The engine produces exactly one
// Decision; applying it is the caller's job.
package resolve
