package state

import "errors"

// Error definitions for the state package.
var (
	ErrFormat           = errors.New("malformed weight-state file")
	ErrUnsupportedDType = errors.New("unsupported tensor dtype")
	ErrHeaderTooLarge   = errors.New("header exceeds maximum size")
)
