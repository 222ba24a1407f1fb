// Package logger provides structured logging for the preparation pipeline
// using zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers. Stream runs tag their entries with a run id and
// the current epoch so interleaved runs can be told apart.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("segmenter")
//	log.Info("window emitted", logger.Fields("steps", 101))
package logger
