// Package config loads, normalizes, and validates ocrsub configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// OCRSUB_LOG_LEVEL. The Config type centralizes the segmentation thresholds,
// text cleanup tables, and history/log locations so the CLI and the
// extraction worker read every knob from one place.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
