package store

import (
	"fmt"
	"net/http"
)

// Sentinels for errors.Is checks. Copies made with WithMessage or WithCause
// still match their sentinel because Is compares status codes only.
var (
	ErrNotFound      = sentinel(http.StatusNotFound, "resource not found")
	ErrAlreadyExists = sentinel(http.StatusConflict, "resource already exists")
	ErrInvalidInput  = sentinel(http.StatusBadRequest, "invalid input")
)

// Error is a persistence failure classified by the HTTP status it maps to.
// Message is safe to show to API clients; Err is for logs.
type Error struct {
	Code    int
	Message string
	Err     error
}

func sentinel(code int, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is a store error of the same class.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// HTTPCode returns the status code the error maps to.
func (e *Error) HTTPCode() int { return e.Code }

// GetStatus lets huma write the error with its own status.
func (e *Error) GetStatus() int { return e.Code }

// WithMessage copies e with a client-facing message naming the entity.
func (e *Error) WithMessage(msg string) *Error {
	return &Error{Code: e.Code, Message: msg, Err: e.Err}
}

// WithCause copies e with the driver error that produced it.
func (e *Error) WithCause(err error) *Error {
	return &Error{Code: e.Code, Message: e.Message, Err: err}
}
