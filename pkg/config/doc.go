// Package config handles deployment profiles for deliveryman.
// It supports loading a profile from multiple sources including
// YAML and TOML files, environment variables, and command-line flags.
package config
