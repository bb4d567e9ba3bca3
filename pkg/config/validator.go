package config

import "fmt"

// ValidationError describes a single invalid configuration field.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Message)
}

// Validate checks the configuration for structural problems. It does not
// verify that engine executables exist; a missing executable is a per-engine
// runtime failure, not a configuration error.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return &ValidationError{Field: "listen", Message: "listen address is required"}
	}
	seen := make(map[string]bool, len(c.Engines))
	for i := range c.Engines {
		e := &c.Engines[i]
		field := fmt.Sprintf("engines[%d]", i)
		if err := e.validate(field); err != nil {
			return err
		}
		if seen[e.Name] {
			return &ValidationError{Field: field + ".name", Message: fmt.Sprintf("duplicate engine name %q", e.Name)}
		}
		seen[e.Name] = true
	}
	return nil
}

func (e *EngineConfig) validate(field string) error {
	if e.Name == "" {
		return &ValidationError{Field: field + ".name", Message: "engine name is required"}
	}
	if e.Path == "" {
		return &ValidationError{Field: field + ".path", Message: "engine executable path is required"}
	}
	if e.Kind != "" && !e.Kind.Valid() {
		return &ValidationError{Field: field + ".kind", Message: fmt.Sprintf("unknown engine kind %q", e.Kind)}
	}
	if e.NodesPerSecond < 0 {
		return &ValidationError{Field: field + ".nodesPerSecond", Message: "nodes-per-second limit cannot be negative"}
	}
	return nil
}
