// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/weex-cli/weex/internal/registry"
	"github.com/weex-cli/weex/internal/state"

	"golang.org/x/mod/semver"
)

// CommandRepair is the command that forces a reinstall.
const CommandRepair = "repair"

var (
	// ErrInvalidVersion indicates a version string is not valid semver.
	ErrInvalidVersion = errors.New("invalid semantic version")

	// ErrNoFetcher is returned when an update check is required but the engine
	// was built without a LatestFetcher.
	ErrNoFetcher = errors.New("no registry fetcher configured")
)

type (
	// LatestFetcher looks up the version published under the "latest" tag.
	LatestFetcher interface {
		Latest(ctx context.Context, name string) (*registry.PackageVersion, error)
	}

	// Confirmer asks the user a yes/no question.
	Confirmer interface {
		Confirm(ctx context.Context, title string) (bool, error)
	}

	// ConfirmFunc adapts a plain function to Confirmer.
	ConfirmFunc func(ctx context.Context, title string) (bool, error)

	// Request is the per-invocation input to Resolve.
	Request struct {
		// Command is the first positional argument, possibly empty.
		Command string
		// RepairArg is the optional target following `repair`.
		RepairArg string
		// Local is the state read from disk. A nil Local counts as "no core".
		Local *state.Local
	}

	// Engine resolves a Request into a Decision.
	Engine struct {
		CoreName string
		// CoreVersion is the version installed when no core is present. Empty means latest.
		CoreVersion string
		// UpdateCheck enables the registry lookup on normal runs.
		UpdateCheck bool
		Fetcher     LatestFetcher
		Confirmer   Confirmer
		Logger      *slog.Logger
	}
)

// Confirm implements Confirmer.
func (f ConfirmFunc) Confirm(ctx context.Context, title string) (bool, error) {
	return f(ctx, title)
}

// Resolve returns exactly one Decision. Registry failures, missing versions,
// unparseable versions and prompt failures (interrupts included) all resolve
// to Skip; the error return is reserved for a context canceled before or
// during the registry lookup.
func (e *Engine) Resolve(ctx context.Context, req Request) (Decision, error) {
	if err := ctx.Err(); err != nil {
		return Decision{}, err
	}

	if req.Command == CommandRepair {
		return e.resolveRepair(req.RepairArg), nil
	}

	var local *state.CoreMetadata
	if req.Local != nil {
		local = req.Local.Core
	}
	if !local.Valid() {
		version := e.CoreVersion
		if version == "" {
			version = VersionLatest
		}
		e.logger().Debug("no local core, installing", "name", e.CoreName, "version", version)
		return Decision{Action: Install, Name: e.CoreName, Version: version}, nil
	}

	if !e.UpdateCheck {
		e.logger().Debug("update check disabled")
		return Decision{Action: Skip}, nil
	}

	return e.resolveUpdate(ctx, local)
}

func (e *Engine) resolveRepair(arg string) Decision {
	target := ParseRepairTarget(arg, e.CoreName)
	if target.Name != e.CoreName {
		e.logger().Debug("repair target is not the core, forwarding", "target", target.String())
		return Decision{Action: Skip}
	}
	return Decision{Action: RepairInstall, Name: target.Name, Version: target.Version}
}

func (e *Engine) resolveUpdate(ctx context.Context, local *state.CoreMetadata) (Decision, error) {
	log := e.logger()

	if e.Fetcher == nil {
		log.Debug("update check skipped", "error", ErrNoFetcher)
		return Decision{Action: Skip}, nil
	}

	latest, err := e.Fetcher.Latest(ctx, e.CoreName)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Decision{}, ctxErr
		}
		log.Debug("latest version lookup failed", "name", e.CoreName, "error", err)
		return Decision{Action: Skip}, nil
	}
	if latest == nil || latest.Version == "" {
		log.Debug("registry returned no version", "name", e.CoreName)
		return Decision{Action: Skip}, nil
	}

	newer, err := isNewer(latest.Version, local.Version)
	if err != nil {
		log.Debug("version comparison failed", "remote", latest.Version, "local", local.Version, "error", err)
		return Decision{Action: Skip}, nil
	}
	if !newer {
		return Decision{Action: Skip}, nil
	}

	if e.Confirmer == nil {
		return Decision{Action: Skip}, nil
	}
	// An interrupt while the question is open cancels ctx. It still means
	// "not now"; whatever runs next sees the cancellation itself.
	ok, err := e.Confirmer.Confirm(ctx, UpgradePrompt(latest.Version, local.Version))
	if err != nil {
		log.Debug("upgrade prompt failed", "error", err, "canceled", ctx.Err() != nil)
		return Decision{Action: Skip}, nil
	}
	if !ok {
		return Decision{Action: Skip}, nil
	}

	return Decision{Action: Upgrade, Name: e.CoreName, Version: latest.Version, From: local.Version}, nil
}

func (e *Engine) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

// UpgradePrompt is the confirmation question shown when a newer core exists.
func UpgradePrompt(remote, local string) string {
	return fmt.Sprintf("New version detected %s, the local version is %s, upgrade now?", remote, local)
}

// isNewer reports whether remote is strictly greater than local.
func isNewer(remote, local string) (bool, error) {
	r, err := normalizeVersion(remote)
	if err != nil {
		return false, err
	}
	l, err := normalizeVersion(local)
	if err != nil {
		return false, err
	}
	return semver.Compare(r, l) > 0, nil
}

// normalizeVersion ensures the version has a "v" prefix for semver.
func normalizeVersion(v string) (string, error) {
	norm := strings.TrimSpace(v)
	if !strings.HasPrefix(norm, "v") {
		norm = "v" + norm
	}
	if !semver.IsValid(norm) {
		return "", fmt.Errorf("%w: %q", ErrInvalidVersion, v)
	}
	return norm, nil
}
