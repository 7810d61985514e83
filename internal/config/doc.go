// SPDX-License-Identifier: MPL-2.0

// Package config loads and persists the molt configuration file.
//
// Configuration lives in config.toml inside the per-user molt directory,
// with a current-directory fallback for project-local overrides. The
// command library path resolves through an explicit flag, the MOLT_LIBRARY
// environment variable, the configured value, then the built-in default.
package config
