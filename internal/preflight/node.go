// SPDX-License-Identifier: MPL-2.0

package preflight

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"golang.org/x/mod/semver"
)

// MinNodeVersion is the oldest Node.js release able to run the core.
const MinNodeVersion = "v7.6.0"

var (
	// ErrNodeNotFound indicates no usable node binary on PATH.
	ErrNodeNotFound = errors.New("node.js not found")

	// ErrNodeTooOld indicates node is older than MinNodeVersion.
	ErrNodeTooOld = errors.New("node.js version too old")

	//nolint:gochecknoglobals // Test seam for `node --version`.
	nodeVersion = func(ctx context.Context) (string, error) {
		out, err := exec.CommandContext(ctx, "node", "--version").Output()
		return string(out), err
	}
)

// NodeVersionError reports an unsupported Node.js version.
type NodeVersionError struct {
	Found string
}

// Error implements the error interface.
func (e *NodeVersionError) Error() string {
	return fmt.Sprintf("Node.js 7.6+ is required to run. You have %s.", e.Found)
}

// Unwrap returns ErrNodeTooOld.
func (e *NodeVersionError) Unwrap() error { return ErrNodeTooOld }

// CheckNode verifies that node is installed and at least MinNodeVersion. It
// returns the detected version.
func CheckNode(ctx context.Context) (string, error) {
	raw, err := nodeVersion(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNodeNotFound, err)
	}

	found := strings.TrimSpace(raw)
	v := found
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) || semver.Compare(v, MinNodeVersion) < 0 {
		return found, &NodeVersionError{Found: found}
	}
	return found, nil
}
