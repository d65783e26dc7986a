// SPDX-License-Identifier: MPL-2.0

package dispatch

import _ "embed"

// Environment variables read by the loader shim.
const (
	EnvCoreData     = "WEEX_CORE_DATA"
	EnvCoreEntry    = "WEEX_CORE_ENTRY"
	EnvCoreTSConfig = "WEEX_CORE_TSCONFIG"
	EnvCoreTSNode   = "WEEX_CORE_TSNODE"
)

// loaderShim is evaluated with `node -e`. It loads the entry's default export,
// constructs it with the bootstrap context and starts it.
//
//go:embed loader.js
var loaderShim string
