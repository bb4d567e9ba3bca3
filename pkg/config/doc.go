// Package config provides configuration types and utilities for the bridge.
//
// This package defines the structures that describe which engines the bridge
// launches and how the service itself runs:
//   - EngineConfig: one UCI engine executable plus its kind-specific options
//   - Config: the full service configuration (listen address, engines, settings)
//
// File-based Configuration:
//
// Configurations can be loaded from YAML or JSON files, detected by extension:
//
//	cfg, err := config.LoadFromFile("uciwire.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Environment variables (see the env tags on Config) override file values when
// ApplyEnv is called after loading.
package config
