// Package apperrors defines the status-coded error taxonomy shared by every
// operation boundary. Handlers translate any error to an HTTP status with
// StatusCode; unknown errors map to 500.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

type Error struct {
	Message    string
	StatusCode int
}

func (e *Error) Error() string {
	return e.Message
}

var (
	ErrUnauthenticated = &Error{Message: "authentication required", StatusCode: http.StatusUnauthorized}
	ErrForbidden       = &Error{Message: "insufficient permissions", StatusCode: http.StatusForbidden}
)

func NotFound(entity string) *Error {
	return &Error{Message: entity + " not found", StatusCode: http.StatusNotFound}
}

func Validation(message string) *Error {
	return &Error{Message: message, StatusCode: http.StatusBadRequest}
}

func Conflict(message string) *Error {
	return &Error{Message: message, StatusCode: http.StatusConflict}
}

func InvalidTransition(from, to string) *Error {
	return &Error{
		Message:    fmt.Sprintf("transition from %q to %q is not allowed", from, to),
		StatusCode: http.StatusBadRequest,
	}
}

func StatusCode(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}
