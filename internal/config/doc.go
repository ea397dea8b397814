// Package config loads, normalizes, and validates the TOML configuration
// for the captioning pipeline.
//
// Configuration is additive: every field has a documented default, unknown
// keys are ignored, and a missing config file yields the defaults. Path
// fields are expanded (~/, relative) and made absolute during load so the
// rest of the codebase never touches unexpanded paths.
package config
