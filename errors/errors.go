package errors

import "errors"

// Sentinel errors for common error conditions
var (
	// ErrSessionNotFound indicates that no session exists for the given id
	ErrSessionNotFound = errors.New("session not found")

	// ErrRoleNotFound indicates that a role profile could not be located
	ErrRoleNotFound = errors.New("role profile not found")

	// ErrAlreadyExists indicates that a resource already exists
	ErrAlreadyExists = errors.New("resource already exists")

	// ErrInvalidInput indicates that input validation failed
	ErrInvalidInput = errors.New("invalid input")

	// ErrInternal indicates an internal server error
	ErrInternal = errors.New("internal error")
)
