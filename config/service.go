package config

import (
	"fmt"
	"slices"

	"github.com/kbukum/speechprep/errors"
	"github.com/kbukum/speechprep/logger"
	"github.com/kbukum/speechprep/observability"
)

// Config is satisfied by any struct embedding ServiceConfig that also
// provides its own ApplyDefaults and Validate.
type Config interface {
	GetServiceConfig() *ServiceConfig
	ApplyDefaults()
	Validate() error
}

// ServiceConfig contains the fields every command needs. Commands extend it
// by embedding it in their own config structs.
//
// Example:
//
//	type Config struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Stream blizzard.Options `yaml:"stream" mapstructure:"stream"`
//	}
type ServiceConfig struct {
	Name        string               `yaml:"name" mapstructure:"name"`
	Environment string               `yaml:"environment" mapstructure:"environment"`
	Version     string               `yaml:"version" mapstructure:"version"`
	Debug       bool                 `yaml:"debug" mapstructure:"debug"`
	Logging     logger.Config        `yaml:"logging" mapstructure:"logging"`
	Telemetry   observability.Config `yaml:"telemetry" mapstructure:"telemetry"`
}

// GetServiceConfig returns the base ServiceConfig.
// When embedded in a larger config struct, this method is promoted
// so the embedding struct automatically satisfies the Config interface.
func (c *ServiceConfig) GetServiceConfig() *ServiceConfig {
	return c
}

// ApplyDefaults applies default values to the base configuration.
// Override this in embedding structs and call c.ServiceConfig.ApplyDefaults() first.
func (c *ServiceConfig) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	// Propagate service name into logging so Init() uses the right tag.
	if c.Logging.ServiceName == "" && c.Name != "" {
		c.Logging.ServiceName = c.Name
	}
	if c.Debug && c.Logging.Level == "" {
		c.Logging.Level = "debug"
	}
	c.Logging.ApplyDefaults()
	if c.Telemetry.ServiceVersion == "" {
		c.Telemetry.ServiceVersion = c.Version
	}
	if c.Telemetry.Environment == "" {
		c.Telemetry.Environment = c.Environment
	}
	c.Telemetry.ApplyDefaults()
}

var validEnvs = []string{"development", "staging", "production"}

// Validate validates the base configuration fields.
// Override this in embedding structs and call c.ServiceConfig.Validate() first.
func (c *ServiceConfig) Validate() error {
	if c.Name == "" {
		return errors.Configuration("name", "config.name is required")
	}
	if !slices.Contains(validEnvs, c.Environment) {
		return errors.Configuration("environment",
			fmt.Sprintf("config.environment must be one of [development, staging, production] (got: %s)", c.Environment))
	}
	if err := c.Logging.Validate(); err != nil {
		return errors.Configuration("logging", "config.logging is invalid").WithCause(err)
	}
	return c.Telemetry.Validate()
}
