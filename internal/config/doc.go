// Package config loads, normalizes, and validates the TOML configuration for
// shorepull. Path fields are tilde-expanded and made absolute during Load;
// derived values (cushion bytes, retry delay, timeouts, cutoff date) are
// exposed as methods so callers never re-parse raw settings.
package config
