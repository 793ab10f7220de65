package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a unique error code
type ErrorCode int

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Status  int       `json:"status,omitempty"`
	Field   string    `json:"field,omitempty"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
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

// Common error codes
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrBadRequest
	ErrUnauthorized
	ErrForbidden
	ErrInternal
	ErrValidation
	ErrRequest
	ErrSuperseded
	ErrUnsupported
	ErrPending
)

const genericRequestMessage = "Something went wrong. Please try again."

// Error constructors
func NewNotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Status:  http.StatusNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func NewBadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    ErrBadRequest,
		Status:  http.StatusBadRequest,
		Message: message,
		Err:     err,
	}
}

// NewValidation reports a client-side validation failure. These are raised
// before any request is issued.
func NewValidation(field, message string) *AppError {
	return &AppError{
		Code:    ErrValidation,
		Field:   field,
		Message: message,
	}
}

// NewRequest wraps a failed backend call. An empty message falls back to a
// generic one.
func NewRequest(status int, message string, err error) *AppError {
	if message == "" {
		message = genericRequestMessage
	}
	return &AppError{
		Code:    ErrRequest,
		Status:  status,
		Message: message,
		Err:     err,
	}
}

func NewForbidden(message string) *AppError {
	return &AppError{
		Code:    ErrForbidden,
		Status:  http.StatusForbidden,
		Message: message,
	}
}

func NewSuperseded(resource string) *AppError {
	return &AppError{
		Code:    ErrSuperseded,
		Message: fmt.Sprintf("%s response superseded by a newer request", resource),
	}
}

func NewUnsupported(op string) *AppError {
	return &AppError{
		Code:    ErrUnsupported,
		Message: fmt.Sprintf("%s is not supported", op),
	}
}

func NewPending(action string) *AppError {
	return &AppError{
		Code:    ErrPending,
		Message: fmt.Sprintf("%s already in progress", action),
	}
}

func NewInternal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Status:  http.StatusInternalServerError,
		Message: "internal server error",
		Err:     err,
	}
}

// Common errors
func NotFound(resource string, err error) *AppError {
	return NewNotFound(resource, err)
}

func BadRequest(message string, err error) *AppError {
	return NewBadRequest(message, err)
}

func Internal(err error) *AppError {
	return NewInternal(err)
}

func Unauthorized(err error) *AppError {
	return &AppError{
		Code:    ErrUnauthorized,
		Status:  http.StatusUnauthorized,
		Message: "unauthorized",
		Err:     err,
	}
}

// As returns the first AppError in err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// CodeOf returns the code of the first AppError in err's chain, or 0.
func CodeOf(err error) ErrorCode {
	if appErr, ok := As(err); ok {
		return appErr.Code
	}
	return 0
}

func Is(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	if appErr, ok := As(err); ok {
		return appErr.Status
	}
	return 0
}

// Message returns a human-readable message for err, preferring the message of
// an AppError over fallback.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	if appErr, ok := As(err); ok && appErr.Message != "" {
		return appErr.Message
	}
	if fallback == "" {
		return genericRequestMessage
	}
	return fallback
}
