// SPDX-License-Identifier: MPL-2.0

// Package bootstrap runs one weex invocation end to end: read the local core
// state, decide whether the core needs installing, apply that decision and hand
// the invocation to the core. A core whose entry point is missing is repaired
// once before the run gives up.
package bootstrap
