package utils

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind is the stable machine-readable classification of an error
// crossing the service boundary. Handlers map kinds to HTTP statuses,
// internal callers branch on them to decide retry/resolution behavior.
type ErrorKind string

const (
	KindValidation   ErrorKind = "VALIDATION_ERROR"
	KindNotFound     ErrorKind = "NOT_FOUND"
	KindUnauthorized ErrorKind = "UNAUTHORIZED"
	KindConflict     ErrorKind = "CONFLICT"
	KindUpstream     ErrorKind = "UPSTREAM_FAILURE"
	KindServer       ErrorKind = "SERVER_ERROR"
)

// AppError carries a kind plus a human readable message. The wrapped
// cause never leaves the process boundary.
type AppError struct {
	Kind  ErrorKind
	Msg   string
	cause error
}

func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Msg, e.cause.Error())
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *AppError) Unwrap() error { return e.cause }

func newAppError(kind ErrorKind, format string, args ...interface{}) *AppError {
	return &AppError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func ValidationError(format string, args ...interface{}) *AppError {
	return newAppError(KindValidation, format, args...)
}

func NotFound(format string, args ...interface{}) *AppError {
	return newAppError(KindNotFound, format, args...)
}

func Unauthorized(format string, args ...interface{}) *AppError {
	return newAppError(KindUnauthorized, format, args...)
}

func Conflict(format string, args ...interface{}) *AppError {
	return newAppError(KindConflict, format, args...)
}

func UpstreamFailure(cause error, format string, args ...interface{}) *AppError {
	e := newAppError(KindUpstream, format, args...)
	e.cause = cause
	return e
}

func ServerError(cause error, format string, args ...interface{}) *AppError {
	e := newAppError(KindServer, format, args...)
	e.cause = cause
	return e
}

// KindOf unwraps through any pkg/errors wrapping and returns the kind of
// the innermost AppError, or KindServer when the error was never
// classified.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindServer
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
