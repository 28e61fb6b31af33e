package entitystore

import "errors"

var (
	// ErrIO is returned when the backing file cannot be read or written.
	ErrIO = errors.New("data file i/o failed")
	// ErrMalformedData is returned when the backing file does not decode into the expected mapping.
	ErrMalformedData = errors.New("data file is malformed")
	// ErrCategoryNotFound is returned by CategoryStore lookups for a category that was never loaded or registered.
	ErrCategoryNotFound = errors.New("category does not exist")
)
