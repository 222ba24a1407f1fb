// Package errors provides the structured error type used across the
// feature-preparation pipeline. Every failure carries a machine-readable
// code so callers can tell a malformed record apart from a bad configuration
// or a short trailing batch.
package errors
