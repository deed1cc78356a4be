package database

import "errors"

var (
	// ErrNotFound: lookup by an id or key that has no row. Handlers map
	// this to 404 rather than a generic failure.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput: request data rejected before touching the index.
	ErrInvalidInput = errors.New("invalid input")
)
