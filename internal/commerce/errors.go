package commerce

import "errors"

var (
	// ErrValidation marks rejected input; nothing was written.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks a missing order, customer, or product reference.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks a unique-constraint collision that was not (or could
	// not be) retried away, e.g. a caller-supplied order number or external
	// id already in use.
	ErrConflict = errors.New("conflict")
)
