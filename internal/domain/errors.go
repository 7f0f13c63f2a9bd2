package domain

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrTargetNotFound is returned when an identifier has no stored record
	ErrTargetNotFound = errors.New("target not found")

	// ErrInvalidURL is returned when the submitted URL is missing or malformed
	ErrInvalidURL = errors.New("invalid URL format")

	// ErrInvalidPassword is returned when a submitted password cannot be hashed
	ErrInvalidPassword = errors.New("invalid password")

	// ErrInvalidID is returned when a caller-chosen identifier is malformed
	ErrInvalidID = errors.New("invalid identifier")

	// ErrUnauthorized is returned when a credential does not match a gated record
	ErrUnauthorized = errors.New("unauthorized")

	// ErrIDTaken is returned by a record store when the identifier is already in use.
	// Generated identifiers retry on it; a caller-chosen identifier gets a conflict.
	ErrIDTaken = errors.New("identifier already exists")

	// ErrGenerationExhausted is returned when no free identifier was found within the attempt bound
	ErrGenerationExhausted = errors.New("identifier generation exhausted")
)

// AppError wraps errors with additional context for better debugging
type AppError struct {
	Err        error  // Original error
	Message    string // User-friendly message
	StatusCode int    // HTTP status code
	Internal   bool   // Whether to log as internal error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

// Unwrap returns the wrapped error for errors.Is and errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a 400 error for a bad URL
func NewValidationError(message string) *AppError {
	return &AppError{
		Err:        ErrInvalidURL,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

// NewPasswordError creates a 400 error for a password that cannot be accepted
func NewPasswordError(message string) *AppError {
	return &AppError{
		Err:        ErrInvalidPassword,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

// NewIDError creates a 400 error for a malformed caller-chosen identifier
func NewIDError(message string) *AppError {
	return &AppError{
		Err:        ErrInvalidID,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

// NewConflictError creates a 409 error for a caller-chosen identifier that is already in use
func NewConflictError(message string) *AppError {
	return &AppError{
		Err:        ErrIDTaken,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

// NewInternalError creates a 500 internal server error
func NewInternalError(err error) *AppError {
	return &AppError{
		Err:        err,
		Message:    "Internal server error occurred",
		StatusCode: http.StatusInternalServerError,
		Internal:   true,
	}
}

// StoreError reports a failed read or write against the backing store.
// The operation is never retried by the store itself.
type StoreError struct {
	Op  string
	Err error
}

// NewStoreError wraps a backend failure for operation op
func NewStoreError(op string, err error) *StoreError {
	return &StoreError{Op: op, Err: err}
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
