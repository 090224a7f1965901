package node

import "errors"

// StoreError represents a domain error from node store operations.
//
// These are business logic errors (node not found, name collision, etc.)
// as opposed to infrastructure errors (disk failure, network error).
// Callers match on Code with errors.As.
type StoreError struct {
	// Code is the error category
	Code ErrorCode

	// Message is a human-readable error description
	Message string

	// Path is the workspace path related to the error (if applicable)
	Path string
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.Path != "" {
		return e.Message + ": " + e.Path
	}
	return e.Message
}

// ErrorCode represents the category of a store error.
type ErrorCode int

const (
	// ErrNotFound indicates the referenced node or folder doesn't exist
	ErrNotFound ErrorCode = iota

	// ErrAlreadyExists indicates a sibling with the name already exists
	ErrAlreadyExists

	// ErrNotFolder indicates the operation expected a folder but got a file
	ErrNotFolder

	// ErrIsFolder indicates the operation expected a file but got a folder
	ErrIsFolder

	// ErrInvalidArgument indicates invalid parameters were provided.
	// Examples: empty name, zero shift amount, non-permutation reorder.
	ErrInvalidArgument

	// ErrIOError indicates an I/O error from the underlying storage
	ErrIOError

	// ErrNotSupported indicates the backend does not support the operation
	ErrNotSupported
)

// IsCode reports whether err is (or wraps) a *StoreError with the given code.
func IsCode(err error, code ErrorCode) bool {
	var se *StoreError
	return errors.As(err, &se) && se.Code == code
}
