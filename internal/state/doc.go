// SPDX-License-Identifier: MPL-2.0

// Package state reads the on-disk state the bootstrap decides from: the
// installed core's package descriptor and the local module registry
// (stores.json). Missing files are normal; corrupt files are reported.
package state
