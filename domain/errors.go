package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeInvalid      ErrorCode = "INVALID"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeInternal     ErrorCode = "INTERNAL"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Validation builds the form-level error shown next to the login or profile form.
func Validation(message string) *Error {
	return NewError(ErrCodeInvalid, message)
}

// Common domain errors.
var (
	ErrEmployeeNotFound = NewError(ErrCodeNotFound, "employee not found")
	ErrSessionNotFound  = NewError(ErrCodeNotFound, "session not found")
	ErrPageNotFound     = NewError(ErrCodeNotFound, "page not found")
	ErrDatasetNotFound  = NewError(ErrCodeNotFound, "dataset not found")
	ErrUnauthorized     = NewError(ErrCodeUnauthorized, "unauthorized")
	ErrForbidden        = NewError(ErrCodeForbidden, "forbidden")
	ErrNotPending       = NewError(ErrCodeConflict, "profile setup is not pending")
	ErrInvalidPayload   = NewError(ErrCodeInvalid, "invalid payload")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}

// MessageOf returns the human message of a domain error, or the fallback.
func MessageOf(err error, fallback string) string {
	var dErr *Error
	if errors.As(err, &dErr) && dErr.Message != "" {
		return dErr.Message
	}
	return fallback
}
