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
	ErrInvalidArgument
	ErrUnauthenticated
	ErrAuthorization
	ErrDuplicateID
	ErrInsufficientStock
	ErrInvalidTransition
	ErrAlreadyInitialized
	ErrInternal
)

// StatusCode maps the error code to an HTTP status for the error middleware.
func (e *AppError) StatusCode() int {
	switch e.Code {
	case ErrNotFound:
		return http.StatusNotFound
	case ErrInvalidArgument:
		return http.StatusBadRequest
	case ErrUnauthenticated:
		return http.StatusUnauthorized
	case ErrAuthorization:
		return http.StatusForbidden
	case ErrDuplicateID, ErrInsufficientStock, ErrInvalidTransition, ErrAlreadyInitialized:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error constructors
func NotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func InvalidArgument(message string, err error) *AppError {
	return &AppError{
		Code:    ErrInvalidArgument,
		Message: message,
		Err:     err,
	}
}

func Unauthenticated(message string, err error) *AppError {
	return &AppError{
		Code:    ErrUnauthenticated,
		Message: message,
		Err:     err,
	}
}

func Authorization(message string, err error) *AppError {
	return &AppError{
		Code:    ErrAuthorization,
		Message: message,
		Err:     err,
	}
}

func DuplicateID(resource string, id uint64) *AppError {
	return &AppError{
		Code:    ErrDuplicateID,
		Message: fmt.Sprintf("%s with id %d already exists", resource, id),
	}
}

func InsufficientStock(message string) *AppError {
	return &AppError{
		Code:    ErrInsufficientStock,
		Message: message,
	}
}

func InvalidTransition(message string) *AppError {
	return &AppError{
		Code:    ErrInvalidTransition,
		Message: message,
	}
}

func AlreadyInitialized(message string) *AppError {
	return &AppError{
		Code:    ErrAlreadyInitialized,
		Message: message,
	}
}

func Internal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal server error",
		Err:     err,
	}
}

// HasCode reports whether err is an AppError carrying the given code.
func HasCode(err error, code ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
