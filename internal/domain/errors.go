package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions.
var (
	// ErrNotFound indicates that a requested entity was not found.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates that an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates that the input data is invalid.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates that the request lacks valid authentication.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates that the request is not allowed for the
	// authenticated user.
	ErrForbidden = errors.New("forbidden")

	// ErrTxMisuse indicates that a write path requiring a caller-supplied
	// transaction was invoked without one. This is a programming error:
	// callers must treat it as fatal rather than retry.
	ErrTxMisuse = errors.New("transaction misuse")

	// ErrInternalError indicates an internal server error.
	ErrInternalError = errors.New("internal error")
)

// ValidationError represents a validation error for a specific field.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError provides details about a not found entity.
type NotFoundError struct {
	Entity string
	ID     int64
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %d", e.Entity, e.ID)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// NewNotFoundError creates a NotFoundError for the given entity and ID.
func NewNotFoundError(entity string, id int64) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

// AlreadyExistsError provides details about a duplicate entity.
type AlreadyExistsError struct {
	Entity string
	Detail string
}

// Error implements the error interface.
func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s already exists: %s", e.Entity, e.Detail)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *AlreadyExistsError) Unwrap() error {
	return ErrAlreadyExists
}

// NewAlreadyExistsError creates an AlreadyExistsError for the given entity.
func NewAlreadyExistsError(entity, detail string) *AlreadyExistsError {
	return &AlreadyExistsError{Entity: entity, Detail: detail}
}

// TxMisuseError reports the operation that detected a missing or
// mismatched transaction handle.
type TxMisuseError struct {
	Op string
}

// Error implements the error interface.
func (e *TxMisuseError) Error() string {
	return fmt.Sprintf("transaction misuse in %s: write requires the caller's transaction", e.Op)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *TxMisuseError) Unwrap() error {
	return ErrTxMisuse
}
