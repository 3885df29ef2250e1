// SPDX-License-Identifier: MPL-2.0

// Package config handles wirehook project configuration using Viper with CUE
// as the file format.
//
// Configuration is read from <project>/wirehook.cue (or the file given with
// --config), validated against the embedded config_schema.cue, and layered
// over built-in defaults. Scalar settings may be overridden from the
// environment with the WIREHOOK_ prefix; the application environment also
// honors APP_ENV. Name tables (aliases, constants, path overrides, plugin
// locations) are decoded straight from CUE because Viper folds map keys to
// lower case and dependency names are case-sensitive.
package config
