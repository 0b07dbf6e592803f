package apperrors

import "errors"

var (
	// ErrInvalidInput marks malformed or out-of-range arguments.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound marks a missing record, or an inactive one where an active record is required.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks a duplicate (mold, tool) pair among active tools.
	ErrConflict = errors.New("conflict")
)
