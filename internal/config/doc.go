// Package config loads, normalizes, and validates recognizer configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// RECOGNIZER_SERVICE_URL. The Config type centralizes every knob the worker,
// API server, and CLI need so the library database, extractor binary, and
// remote endpoints are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
