// Package features defines the arrays that flow through the preparation
// pipeline: per-utterance records, padded batches laid out time-major, and
// the filtered tensors handed to a training loop.
//
// Channels are a fixed, explicit set. Stages address them through typed
// fields rather than by name; names are only used at the configuration
// boundary (which_sources, zero_unvoiced).
package features
