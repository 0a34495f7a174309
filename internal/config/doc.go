// Package config loads, validates, and normalizes the TOML configuration
// that drives every pipeline invocation. Defaults mirror the channel's
// production settings so an empty config file yields a working setup.
package config
