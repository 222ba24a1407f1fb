// Package config loads command configuration.
//
// It uses Viper to read a config.yml found next to the command (or given
// explicitly), then overlays environment variables and an optional .env
// file loaded with godotenv. Environment keys map onto nested keys by
// underscores, so STREAM_BATCH_SIZE sets stream.batch_size.
//
// # Usage
//
//	var cfg Config // embeds config.ServiceConfig
//	err := config.Load("blizzardprep", &cfg, config.WithConfigFile(path))
package config
