// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// An ActionableError names the operation that failed, the resource involved
// (a path, a package spec, a registry URL) and the steps a user can take to
// recover, such as running `weex repair`.
//
// The issue catalog holds longer markdown help for the failures that stop weex
// outright. The CLI renders an entry with glamour below the error line.
package issue
