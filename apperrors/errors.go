package apperrors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Error represents an application error
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind (status code).
// This lets errors.Is(err, apperrors.ErrConflict) match any conflict,
// whatever its message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// JSON returns the error as a JSON string
func (e *Error) JSON() string {
	b, _ := json.Marshal(e)
	return string(b)
}

// New creates a new Error
func New(code int, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Kinds used across the service. Handlers compare with errors.Is and
// use the message of the concrete error for the response body.
var (
	ErrValidation   = New(http.StatusBadRequest, "Validation error", nil)
	ErrUnauthorized = New(http.StatusUnauthorized, "Unauthorized", nil)
	ErrNotFound     = New(http.StatusNotFound, "Not found", nil)
	ErrConflict     = New(http.StatusConflict, "Conflict", nil)
	ErrInternal     = New(http.StatusInternalServerError, "Internal server error", nil)
	ErrUpstream     = New(http.StatusBadGateway, "Upstream failure", nil)
)

func Validation(message string, err error) *Error {
	return New(http.StatusBadRequest, message, err)
}

func Unauthorized(message string, err error) *Error {
	return New(http.StatusUnauthorized, message, err)
}

func NotFound(message string, err error) *Error {
	return New(http.StatusNotFound, message, err)
}

func Conflict(message string, err error) *Error {
	return New(http.StatusConflict, message, err)
}

func Internal(message string, err error) *Error {
	return New(http.StatusInternalServerError, message, err)
}

func Upstream(message string, err error) *Error {
	return New(http.StatusBadGateway, message, err)
}

// As extracts the *Error from err's chain. Anything else is reported as an
// internal error wrapping err.
func As(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(ErrInternal.Message, err)
}
