// SPDX-License-Identifier: MPL-2.0

// Package registry queries an npm-compatible registry for published package
// versions. Every lookup is a single bounded request: there are no retries, and
// a slow registry surfaces as an error once the client timeout expires.
package registry
