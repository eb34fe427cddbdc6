// Package config loads, validates, and normalizes craftpress configuration.
//
// Configuration is read from a TOML file (default ~/.config/craftpress/config.toml,
// with a project-local craftpress.toml fallback). All path fields are expanded and
// absolute after Load. Structural settings are validated at load time; external
// service credentials are validated separately so read-only commands can run
// without them.
package config
