// Package transform holds the stages between the record reader and the
// consumer: cleaning, sorting into batches, padding, length equalization,
// segmentation, feature derivation and normalization.
//
// Per-record stages take and return features.Utterance values. Batch stages
// take *features.Batch and may update it in place; every batch they receive
// is owned by the stage chain and never shared with the reader.
package transform
