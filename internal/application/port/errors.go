package port

import "errors"

var (
	// ErrNotFound is returned when no request exists with the given ID
	ErrNotFound = errors.New("request not found")

	// ErrVersionConflict is returned when a compare-and-swap loses a race:
	// the stored version no longer matches the caller's expected version
	ErrVersionConflict = errors.New("version conflict")
)
