package models

import (
	"errors"
	"fmt"
)

// Error codes carried by AppError.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeNotFound     = "NOT_FOUND"
	CodePersistence  = "PERSISTENCE_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
)

// AppError represents a classified application error.
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewValidationError reports missing or malformed submission fields.
func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

// NewNotFoundError reports an operation against a missing entity.
func NewNotFoundError(resource string, id string) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %s not found", resource, id),
	}
}

// NewPersistenceError reports a failed durable write or load. The in-memory
// state change that preceded it stays applied.
func NewPersistenceError(op string, err error) *AppError {
	return &AppError{
		Code:    CodePersistence,
		Message: fmt.Sprintf("failed to persist %s", op),
		Err:     err,
	}
}

// NewUnauthorizedError reports a mutation attempted without an identity.
func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
	}
}

// HasCode reports whether err wraps an AppError with the given code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

func IsValidation(err error) bool  { return HasCode(err, CodeValidation) }
func IsNotFound(err error) bool    { return HasCode(err, CodeNotFound) }
func IsPersistence(err error) bool { return HasCode(err, CodePersistence) }
