package models

import "errors"

// Errors returned by storage implementations.
var (
	// ErrConcurrentUpdate means a write was based on a stale document version.
	ErrConcurrentUpdate = errors.New("document was modified concurrently")
	// ErrNotFound means the requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists means a record with the same key is already stored.
	ErrAlreadyExists = errors.New("already exists")
)
