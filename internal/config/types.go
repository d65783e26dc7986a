// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"
)

const (
	// LogLevelDebug enables the resolution trace (registry responses, decisions).
	LogLevelDebug LogLevel = "debug"
	// LogLevelInfo reports install and upgrade progress.
	LogLevelInfo LogLevel = "info"
	// LogLevelWarn reports only recoverable failures. This is the default.
	LogLevelWarn LogLevel = "warn"
	// LogLevelError reports only failures.
	LogLevelError LogLevel = "error"
)

// ErrInvalidLogLevel is returned when a LogLevel value is not recognized.
var ErrInvalidLogLevel = errors.New("invalid log level")

type (
	// LogLevel is the bootstrap's logging threshold as written in config.json.
	LogLevel string

	// InvalidLogLevelError is returned when a LogLevel value is not recognized.
	// It wraps ErrInvalidLogLevel for errors.Is() compatibility.
	InvalidLogLevelError struct {
		Value LogLevel
	}

	// Bootstrap is the configuration for one weex invocation. It is built once
	// by Resolve and never mutated; fields are unexported and exposed through
	// accessors so collaborators cannot rewrite shared paths mid-run.
	Bootstrap struct {
		coreName             string
		coreRoot             string
		corePath             string
		moduleRoot           string
		moduleConfigFileName string
		globalConfigFileName string
		home                 string
		trash                string
		registry             string
		registryTimeout      time.Duration
		coreVersion          string
		compiled             bool
		force                bool
		allowSudo            bool
		updateCheck          bool
		logLevel             LogLevel
		args                 []string
	}
)

// String returns the level name.
func (l LogLevel) String() string { return string(l) }

// IsValid returns whether the LogLevel is one of the defined levels.
func (l LogLevel) IsValid() (bool, []error) {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true, nil
	default:
		return false, []error{&InvalidLogLevelError{Value: l}}
	}
}

// SlogLevel maps the level onto log/slog. Unknown values map to warn.
func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelInfo:
		return slog.LevelInfo
	case LogLevelError:
		return slog.LevelError
	case LogLevelWarn:
		return slog.LevelWarn
	}
	return slog.LevelWarn
}

// Error implements the error interface for InvalidLogLevelError.
func (e *InvalidLogLevelError) Error() string {
	return fmt.Sprintf("invalid log level %q (valid: debug, info, warn, error)", e.Value)
}

// Unwrap returns ErrInvalidLogLevel for errors.Is() compatibility.
func (e *InvalidLogLevelError) Unwrap() error { return ErrInvalidLogLevel }

// CoreName is the npm package identifier of the core module.
func (b *Bootstrap) CoreName() string { return b.coreName }

// CoreRoot is the npm prefix the core is installed under (~/.wx/core).
func (b *Bootstrap) CoreRoot() string { return b.coreRoot }

// CorePath is the installed core package directory.
func (b *Bootstrap) CorePath() string { return b.corePath }

// ModuleRoot is the directory holding locally installed weex modules.
func (b *Bootstrap) ModuleRoot() string { return b.moduleRoot }

// ModuleConfigFileName is the module registry file name under ModuleRoot.
func (b *Bootstrap) ModuleConfigFileName() string { return b.moduleConfigFileName }

// GlobalConfigFileName is the global config file name under Home.
func (b *Bootstrap) GlobalConfigFileName() string { return b.globalConfigFileName }

// Home is the weex home directory (~/.wx).
func (b *Bootstrap) Home() string { return b.home }

// Trash is where replaced core installations are moved.
func (b *Bootstrap) Trash() string { return b.trash }

// Registry is the npm registry base URL.
func (b *Bootstrap) Registry() string { return b.registry }

// RegistryTimeout bounds the single latest-version lookup.
func (b *Bootstrap) RegistryTimeout() time.Duration { return b.registryTimeout }

// CoreVersion is the version to install when no core is present.
func (b *Bootstrap) CoreVersion() string { return b.coreVersion }

// Compiled reports whether --compiled was given.
func (b *Bootstrap) Compiled() bool { return b.compiled }

// Force reports whether --force/-f was given.
func (b *Bootstrap) Force() bool { return b.force }

// AllowSudo reports whether WEEX_ALLOW_SUDO is set.
func (b *Bootstrap) AllowSudo() bool { return b.allowSudo }

// UpdateCheck reports whether normal runs may query the registry for upgrades.
func (b *Bootstrap) UpdateCheck() bool { return b.updateCheck }

// LogLevel is the effective logging threshold.
func (b *Bootstrap) LogLevel() LogLevel { return b.logLevel }

// Args returns a copy of the raw argument vector.
func (b *Bootstrap) Args() []string { return slices.Clone(b.args) }
