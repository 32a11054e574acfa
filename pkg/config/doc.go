// Package config loads pipedeck settings from a YAML or JSON file with
// environment overrides.
package config
