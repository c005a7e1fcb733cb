// Package files provides file system discovery utilities for the spectral
// power analysis pipeline.
//
// Discovery walks the raw acquisition tree for trace exports and locates
// sibling windowed artifacts for a given (animal, sleep state, chunk) key, so
// downstream stages address artifacts by identity instead of re-parsing
// paths.
package files
