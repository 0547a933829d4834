// Package apperrors defines the failure taxonomy shared by the core
// components and its mapping onto HTTP status codes.
//
// Core code returns either a bare sentinel or an *AppError wrapping one, so
// callers always test with errors.Is:
//
//	if errors.Is(err, apperrors.ErrNotFound) { ... }
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for the failure taxonomy.
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotFound      = errors.New("resource not found")
	ErrDuplicateUser = errors.New("user already exists")
	ErrAuthFailed    = errors.New("invalid username or password")
	ErrTransient     = errors.New("temporarily unavailable")
)

// AppError is a typed failure carrying a machine-readable code and the HTTP
// status the boundary layer should answer with.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil && e.Err.Error() != e.Message {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// InvalidInput creates a 400 error.
func InvalidInput(message string) *AppError {
	return &AppError{
		Code:    "INVALID_INPUT",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// NotFound creates a 404 error.
func NotFound(resource string, id any) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s %v not found", resource, id),
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// DuplicateUser creates a 409 error.
func DuplicateUser(username string) *AppError {
	return &AppError{
		Code:    "DUPLICATE_USER",
		Message: fmt.Sprintf("username %q is already taken", username),
		Status:  http.StatusConflict,
		Err:     ErrDuplicateUser,
	}
}

// AuthFailed creates a 401 error. The message is fixed so that an unknown
// username and a wrong password produce identical values.
func AuthFailed() *AppError {
	return &AppError{
		Code:    "AUTH_FAILED",
		Message: ErrAuthFailed.Error(),
		Status:  http.StatusUnauthorized,
		Err:     ErrAuthFailed,
	}
}

// Transient creates a 503 error for contention that outlasted the retry budget.
func Transient(err error) *AppError {
	return &AppError{
		Code:    "TRANSIENT",
		Message: "the operation could not complete, try again",
		Status:  http.StatusServiceUnavailable,
		Err:     errors.Join(ErrTransient, err),
	}
}

// HTTPStatus returns the HTTP status code for the given error.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}

	switch {
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicateUser):
		return http.StatusConflict
	case errors.Is(err, ErrAuthFailed):
		return http.StatusUnauthorized
	case errors.Is(err, ErrTransient):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Code returns the machine-readable code for the given error, or
// "INTERNAL_ERROR" for anything outside the taxonomy.
func Code(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}

	switch {
	case errors.Is(err, ErrInvalidInput):
		return "INVALID_INPUT"
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrDuplicateUser):
		return "DUPLICATE_USER"
	case errors.Is(err, ErrAuthFailed):
		return "AUTH_FAILED"
	case errors.Is(err, ErrTransient):
		return "TRANSIENT"
	default:
		return "INTERNAL_ERROR"
	}
}

// Message returns a message safe to show to clients. Errors outside the
// taxonomy are reduced to a generic string.
func Message(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	if HTTPStatus(err) == http.StatusInternalServerError {
		return "internal server error"
	}
	return err.Error()
}
