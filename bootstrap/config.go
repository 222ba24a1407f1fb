package bootstrap

import (
	"github.com/kbukum/speechprep/config"
)

// Config is the interface constraint for application configuration types.
// Any struct that embeds config.ServiceConfig (value embedding) and
// overrides ApplyDefaults and Validate satisfies it.
//
// Example:
//
//	type Config struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Stream blizzard.Options `yaml:"stream" mapstructure:"stream"`
//	}
//
//	app, err := bootstrap.NewApp[*Config](&cfg)
type Config = config.Config
