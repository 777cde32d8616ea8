// Package config loads, normalizes, and validates captiondesk configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, loads a working-directory .env file, and
// honours environment overrides such as CAPTIONDESK_API_URL and
// CAPTIONDESK_TOKEN. The Config value is built once by the CLI and passed
// explicitly to every component that needs it; nothing reads settings from
// ambient globals.
//
// Always obtain settings through this package so downstream code receives
// sanitized URLs, expanded paths, canonical log formats, and clear
// validation errors.
package config
