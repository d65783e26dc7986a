// SPDX-License-Identifier: MPL-2.0

package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/weex-cli/weex/internal/issue"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"github.com/spf13/viper"
)

// maxGlobalConfigBytes caps config.json; anything larger is not a config file.
const maxGlobalConfigBytes = 1 << 20

// ErrInvalidGlobalConfig is wrapped by every global config validation failure.
var ErrInvalidGlobalConfig = errors.New("invalid global config")

//go:embed config_schema.cue
var configSchema string

// mergeGlobalConfig validates the global config file at path and merges it into
// viper below env and flags. A missing file is not an error.
func mergeGlobalConfig(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return issue.NewErrorContext().
			WithOperation("read global config").
			WithResource(path).
			WithSuggestion("Check that the file is readable").
			Wrap(err).
			BuildError()
	}

	configMap, err := decodeGlobalConfig(data, path)
	if err != nil {
		return issue.NewErrorContext().
			WithOperation("load global config").
			WithResource(path).
			WithSuggestion("Check that the file contains a valid JSON object").
			WithSuggestion("Supported keys: registry, registry_timeout, log_level, update_check").
			Wrap(err).
			BuildError()
	}

	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge global config: %w", err)
	}
	return nil
}

// decodeGlobalConfig compiles the JSON document as CUE, unifies it with the
// embedded #Config schema and decodes the result.
func decodeGlobalConfig(data []byte, path string) (map[string]any, error) {
	if len(data) > maxGlobalConfigBytes {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", ErrInvalidGlobalConfig, maxGlobalConfigBytes)
	}

	ctx := cuecontext.New()

	schemaValue := ctx.CompileString(configSchema)
	if schemaValue.Err() != nil {
		return nil, fmt.Errorf("internal error: failed to compile config schema: %w", schemaValue.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(path))
	if userValue.Err() != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidGlobalConfig, cueerrors.Details(userValue.Err(), nil))
	}

	schema := schemaValue.LookupPath(cue.ParsePath("#Config"))
	unified := schema.Unify(userValue)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidGlobalConfig, cueerrors.Details(err, nil))
	}

	var configMap map[string]any
	if err := unified.Decode(&configMap); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidGlobalConfig, cueerrors.Details(err, nil))
	}
	return configMap, nil
}
