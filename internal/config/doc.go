// Package config loads, normalizes, and validates shorts configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, loads optional .env files, and honours
// environment fallbacks for artifact backend credentials. The Config type
// centralizes every knob the daemon and CLI need: scratch and artifact
// directories, fetcher and transcoder binaries, overlay fonts, reachability
// probing, and the artifact backend.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
