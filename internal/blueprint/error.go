package blueprint

import "errors"

// Error definitions for the blueprint package.
var (
	ErrClassNotFound   = errors.New("blueprint class not found")
	ErrInvalidManifest = errors.New("invalid blueprint manifest")
	ErrInvalidParams   = errors.New("invalid init params")
)
