// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"io"
	"log/slog"

	"github.com/weex-cli/weex/internal/config"

	"github.com/charmbracelet/log"
)

// newLogger returns a slog.Logger rendering through charmbracelet/log.
// Timestamps are only shown at debug level.
func newLogger(w io.Writer, level config.LogLevel) *slog.Logger {
	handler := log.NewWithOptions(w, log.Options{
		Level:           log.Level(level.SlogLevel()),
		Prefix:          config.AppName,
		ReportTimestamp: level == config.LogLevelDebug,
	})
	return slog.New(handler)
}
