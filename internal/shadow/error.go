package shadow

import "errors"

// Error definitions for the shadow package.
var (
	ErrNoHandler   = errors.New("no handler to delegate to")
	ErrNotResolved = errors.New("not resolved")
)
