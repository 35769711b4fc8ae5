// Package config loads and validates the YAML application configuration.
// Each section owns its validation and exposes typed duration getters.
package config
