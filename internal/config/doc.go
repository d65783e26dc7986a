// SPDX-License-Identifier: MPL-2.0

// Package config resolves the immutable bootstrap configuration for a single
// weex invocation.
//
// Every location the bootstrap touches (core install root, core package path,
// module root, home and trash directories) and the registry URL are resolved
// with the precedence explicit flag > environment variable > global config file
// (~/.wx/config.json) > computed default. Viper implements the precedence; the
// global config file is JSON validated against an embedded CUE schema
// (config_schema.cue) before it is merged.
package config
