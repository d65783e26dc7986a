// SPDX-License-Identifier: MPL-2.0

// Package dispatch hands an invocation over to the installed core. The core is a
// Node.js program; it runs either from TypeScript sources (through ts-node) or
// from its compiled JavaScript, and receives the bootstrap context as JSON.
//
// The `completion` command never reaches the core: shell completion scripts are
// generated locally.
package dispatch
