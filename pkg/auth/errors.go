package auth

import (
	"fmt"
	"net/http"
)

//go:generate go run github.com/dmarkham/enumer -type Category -trimprefix Category -transform snake -output category.gen.go

// Category classifies service errors for mapping to transport status codes.
type Category int

const (
	CategoryBadRequest Category = iota
	CategoryForbidden
	CategoryNotSupported
	CategoryInternal
)

// HTTPStatus maps the category to its HTTP response status.
func (i Category) HTTPStatus() int {
	switch i {
	case CategoryBadRequest:
		return http.StatusBadRequest
	case CategoryForbidden:
		return http.StatusForbidden
	case CategoryNotSupported:
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}

// Error is a categorized authentication service error. Its message is safe
// to surface to callers: it may name the authentication id, never the
// credential value.
type Error struct {
	Category Category
	Message  string
	cause    error
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// BadRequest reports a malformed or unrecognized request.
func BadRequest(format string, args ...interface{}) *Error {
	return &Error{Category: CategoryBadRequest, Message: fmt.Sprintf(format, args...)}
}

// Forbidden reports rejected credentials or missing credential material.
func Forbidden(format string, args ...interface{}) *Error {
	return &Error{Category: CategoryForbidden, Message: fmt.Sprintf(format, args...)}
}

// NotSupported reports an operation the service does not implement.
func NotSupported(format string, args ...interface{}) *Error {
	return &Error{Category: CategoryNotSupported, Message: fmt.Sprintf(format, args...)}
}

// Internal reports a fault in the service or its collaborators. The cause is
// kept for logs; only the message crosses the wire.
func Internal(message string, cause error) *Error {
	return &Error{Category: CategoryInternal, Message: message, cause: cause}
}
