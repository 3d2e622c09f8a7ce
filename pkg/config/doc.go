// Package config provides configuration management for creditgate.
//
// This package handles loading, validating, and managing configuration from
// YAML files with environment variable overrides. It provides a type-safe
// configuration system with validation and sensible defaults.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("config.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//
// Environment variables follow the naming convention CREDITGATE_SECTION_FIELD,
// for example CREDITGATE_PROVIDER_API_KEY overrides provider.api_key.
//
// # Thresholds
//
// The pacing thresholds (warning, critical) and the admission circuit
// breaker floor are centralized in a single validated Thresholds object.
// Both the pacing bucket and the admission guard consume the same instance
// by reference, so the ordering invariant critical < warning < capacity is
// enforced in one place. When watch mode is enabled, a Watcher re-applies
// threshold edits from the configuration file at runtime.
package config
