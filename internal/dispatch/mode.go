// SPDX-License-Identifier: MPL-2.0

package dispatch

import (
	"fmt"
	"os"
	"path/filepath"
)

// Mode values.
const (
	CompiledMode Mode = iota
	SourceMode
)

// Mode selects how the core is loaded.
type Mode int

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case SourceMode:
		return "source"
	case CompiledMode:
		return "compiled"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// SelectMode picks SourceMode when corePath holds a src directory and the user
// did not ask for the compiled build.
func SelectMode(corePath string, compiled bool) Mode {
	if compiled {
		return CompiledMode
	}
	if isDir(filepath.Join(corePath, "src")) {
		return SourceMode
	}
	return CompiledMode
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
