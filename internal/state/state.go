// SPDX-License-Identifier: MPL-2.0

package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"os"
	"slices"
)

// maxStateFileBytes caps how much of a state file is read.
const maxStateFileBytes = 10 << 20

// ErrCorruptState is wrapped by CorruptStateError.
var ErrCorruptState = errors.New("corrupt local state")

type (
	// CoreMetadata is the subset of the installed core's package.json the
	// bootstrap needs.
	CoreMetadata struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	}

	// Modules maps an installed module name to its raw metadata. The installer
	// owns the entry format; the bootstrap only passes it through to the core.
	Modules map[string]json.RawMessage

	// Local is the state read at the start of a run.
	Local struct {
		// Core is nil when no core package descriptor exists.
		Core *CoreMetadata
		// Modules is never nil.
		Modules Modules
	}

	// Paths names the two files Read consults.
	Paths struct {
		CorePackageJSON  string
		ModuleConfigPath string
	}

	// CorruptStateError reports a state file that exists but cannot be decoded.
	// Proceeding with it risks a corrupt install, so it is never defaulted away.
	CorruptStateError struct {
		Path string
		Err  error
	}
)

// Error implements the error interface.
func (e *CorruptStateError) Error() string {
	return fmt.Sprintf("corrupt local state in %s: %v", e.Path, e.Err)
}

// Unwrap returns both ErrCorruptState and the decode error.
func (e *CorruptStateError) Unwrap() []error { return []error{ErrCorruptState, e.Err} }

// Valid reports whether the metadata names a package and a version.
func (m *CoreMetadata) Valid() bool {
	return m != nil && m.Name != "" && m.Version != ""
}

// Names returns the module names in sorted order.
func (m Modules) Names() []string {
	return slices.Sorted(maps.Keys(m))
}

// Read loads the core metadata and the module registry.
func Read(p Paths) (*Local, error) {
	local := &Local{Modules: Modules{}}

	var core CoreMetadata
	found, err := readJSON(p.CorePackageJSON, &core)
	if err != nil {
		return nil, err
	}
	if found {
		local.Core = &core
	}

	var modules Modules
	found, err = readJSON(p.ModuleConfigPath, &modules)
	if err != nil {
		return nil, err
	}
	if found && modules != nil {
		local.Modules = modules
	}

	return local, nil
}

// readJSON decodes the file at path into v. A missing file reports found=false
// without error.
func readJSON(path string, v any) (found bool, err error) {
	if path == "" {
		return false, nil
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() { _ = f.Close() }() // read-only file handle

	info, err := f.Stat()
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return false, &CorruptStateError{Path: path, Err: errors.New("is a directory")}
	}
	if info.Size() > maxStateFileBytes {
		return false, &CorruptStateError{Path: path, Err: fmt.Errorf("file exceeds %d bytes", maxStateFileBytes)}
	}

	data, err := io.ReadAll(io.LimitReader(f, maxStateFileBytes+1))
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", path, err)
	}
	// Unmarshal rejects trailing data after the first value.
	if err := json.Unmarshal(data, v); err != nil {
		return false, &CorruptStateError{Path: path, Err: err}
	}
	return true, nil
}
