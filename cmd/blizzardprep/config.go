package main

import (
	"github.com/kbukum/speechprep/blizzard"
	"github.com/kbukum/speechprep/config"
	"github.com/kbukum/speechprep/errors"
	"github.com/kbukum/speechprep/storage"
)

const (
	serviceName      = "blizzardprep"
	defaultStatsPath = "stats/blizzard.yml"
)

// Config is the blizzardprep configuration, read from
// cmd/blizzardprep/config.yml and the environment.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Stream    blizzard.Options `yaml:"stream" mapstructure:"stream"`
	Storage   storage.Config   `yaml:"storage" mapstructure:"storage"`
	StatsPath string           `yaml:"stats_path" mapstructure:"stats_path"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = serviceName
	}
	c.ServiceConfig.ApplyDefaults()
	c.Stream.ApplyDefaults()
	c.Storage.ApplyDefaults()
	if c.StatsPath == "" {
		c.StatsPath = defaultStatsPath
	}
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Stream.Validate(); err != nil {
		return err
	}
	if err := c.Storage.Validate(); err != nil {
		return errors.Configuration("storage", err.Error())
	}
	return nil
}
