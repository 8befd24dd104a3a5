// Package config loads and validates the YAML configuration for halcyonctl
// and supports hot-reload via file watching. Missing optional fields are
// filled with defaults; a reload that fails to parse keeps the previous
// configuration active.
package config
