// SPDX-License-Identifier: MPL-2.0

// Package config handles pyz's own configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/pyz/config.cue (or the XDG equivalent on Linux,
// ~/Library/Application Support/pyz/config.cue on macOS, %APPDATA%\pyz\config.cue on
// Windows), falling back to ./config.cue. It provides build defaults that apply when a
// manifest or flag does not set them: archive root, compression level, launcher shebang
// and the manifest file name, plus UI settings.
//
// Files are validated against an embedded CUE schema (config_schema.cue). Environment
// variables prefixed with PYZ_ override file values (PYZ_COMPRESSION_LEVEL, PYZ_UI_VERBOSE).
package config
