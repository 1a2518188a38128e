// Package errdefs defines the failure kinds surfaced by shadow model
// resolution, construction and restoration. Every error returned by the
// assembler and loaders wraps exactly one of these, so callers decide with
// errors.Is whether a missing shadow model is fatal.
package errdefs

import (
	"errors"
	"fmt"
)

// Error kinds.
var (
	// ErrImport reports that a blueprint source or class could not be loaded.
	ErrImport = errors.New("import failure")

	// ErrConstruction reports that a model, criterion or optimizer could not be built.
	ErrConstruction = errors.New("construction failure")

	// ErrUnknownName is the registry-miss variant of ErrConstruction.
	ErrUnknownName = fmt.Errorf("%w: unknown name", ErrConstruction)

	// ErrFileNotFound reports that a required weights or metadata file does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrStateLoad reports that a weights file exists but could not be loaded into a model.
	ErrStateLoad = errors.New("state load failure")
)

// Import wraps cause as an ErrImport naming the class and source path.
func Import(path, className string, cause error) error {
	return fmt.Errorf("%w: failed to create model blueprint from %s in %s: %w", ErrImport, className, path, cause)
}

// Construction wraps cause as an ErrConstruction.
func Construction(what string, cause error) error {
	return fmt.Errorf("%w: failed to create %s: %w", ErrConstruction, what, cause)
}

// UnknownName reports a registry miss for name.
func UnknownName(kind, name string, cause error) error {
	return fmt.Errorf("%w: failed to create %s from %q: %w", ErrUnknownName, kind, name, cause)
}

// FileNotFound wraps cause as an ErrFileNotFound naming path.
func FileNotFound(what, path string, cause error) error {
	return fmt.Errorf("%w: %s at %s: %w", ErrFileNotFound, what, path, cause)
}

// StateLoad wraps cause as an ErrStateLoad naming path.
func StateLoad(path string, cause error) error {
	return fmt.Errorf("%w: failed to load model state from %s: %w", ErrStateLoad, path, cause)
}
