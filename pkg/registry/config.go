package registry

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Policy names a conflict resolution strategy.
type Policy string

const (
	// PolicyRaise rejects the new registration.
	PolicyRaise Policy = "raise"

	// PolicyOverwrite replaces the existing registration.
	PolicyOverwrite Policy = "overwrite"

	// PolicySubclass keeps whichever schema subsumes the other and
	// rejects unrelated schemas. Schema conflicts only.
	PolicySubclass Policy = "subclass"

	// PolicyIgnore keeps the existing registration and drops the new
	// one silently.
	PolicyIgnore Policy = "ignore"
)

// Config controls registry conflict handling and the serialization
// context shared by its sessions.
type Config struct {
	// OnSchemaConflict applies when a resource is registered twice
	// with differing schemas.
	OnSchemaConflict Policy `yaml:"on_schema_conflict"`

	// OnIdentifierConflict applies when an identifier is registered
	// twice with differing instances.
	OnIdentifierConflict Policy `yaml:"on_identifier_conflict"`

	// Context maps prefixes to namespace IRIs for serialization.
	Context map[string]string `yaml:"context"`
}

// DefaultConfig returns the stock policies: schema conflicts are
// fatal, identifier conflicts overwrite.
func DefaultConfig() Config {
	return Config{
		OnSchemaConflict:     PolicyRaise,
		OnIdentifierConflict: PolicyOverwrite,
	}
}

// Validate checks the policy values.
func (c Config) Validate() error {
	switch c.OnSchemaConflict {
	case PolicyRaise, PolicyOverwrite, PolicySubclass, PolicyIgnore:
	default:
		return fmt.Errorf("invalid schema conflict policy: %q", c.OnSchemaConflict)
	}
	switch c.OnIdentifierConflict {
	case PolicyRaise, PolicyOverwrite, PolicyIgnore:
	default:
		return fmt.Errorf("invalid identifier conflict policy: %q", c.OnIdentifierConflict)
	}
	return nil
}

// LoadConfig reads a YAML config file. Missing policies fall back to
// the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) // #nosec G304 - config path comes from the operator
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
