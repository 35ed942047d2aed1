// Package config loads, normalizes, and validates the cardpress
// configuration file.
//
// Configuration is TOML. Load resolves the file from an explicit path, the
// user config directory, or a project-local cardpress.toml, applies defaults,
// expands ~ in every path field, and validates cross-field constraints (for
// example that the octgn output has a game id). The embedded sample config is
// written by `cardpress config init`.
package config
