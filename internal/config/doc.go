// SPDX-License-Identifier: MPL-2.0

// Package config handles project configuration using Viper.
//
// Configuration is read from usbundle.cue (or usbundle.toml) in the project
// directory, or from the file named by --config. Both formats are validated
// against the embedded CUE schema (config_schema.cue). Environment variables
// prefixed with USBUNDLE_ override file values, with nested keys joined by
// underscores (USBUNDLE_BUILD_MINIFY=true).
package config
