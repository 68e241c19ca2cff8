package errors

import (
	stderr "errors"
	"fmt"
	"net/http"
)

// AppError is the service error type. It carries a stable machine-readable
// id, an HTTP status code and an optional cause.
type AppError struct {
	ID         string `json:"id"`
	Message    string `json:"detail"`
	StatusCode int    `json:"code"`
	cause      error
}

func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.cause }

type Option func(*AppError)

// WithID sets the stable error id, e.g. "api.generate_report.invalid_args".
func WithID(id string) Option {
	return func(e *AppError) { e.ID = id }
}

func WithCause(cause error) Option {
	return func(e *AppError) { e.cause = cause }
}

func WithStatus(code int) Option {
	return func(e *AppError) { e.StatusCode = code }
}

func New(msg string, opts ...Option) *AppError {
	e := &AppError{
		ID:         "app.internal",
		Message:    msg,
		StatusCode: http.StatusInternalServerError,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func Internal(msg string, opts ...Option) *AppError {
	return New(msg, opts...)
}

// Validation reports a bad request shape. Surfaced as HTTP 400 before any
// side effect is performed.
func Validation(msg string, opts ...Option) *AppError {
	return New(msg, append([]Option{
		WithID("api.request.invalid"),
		WithStatus(http.StatusBadRequest),
	}, opts...)...)
}

// Unauthenticated reports a missing or invalid bearer token.
func Unauthenticated(msg string, opts ...Option) *AppError {
	return New(msg, append([]Option{
		WithID("auth.token.missing"),
		WithStatus(http.StatusUnauthorized),
	}, opts...)...)
}

// Upstream reports a non-2xx response from the Brandlight API. The remote
// status code is propagated as our own response status when unhandled.
func Upstream(status int, body string, opts ...Option) *AppError {
	return New(fmt.Sprintf("brandlight api returned %d: %s", status, body), append([]Option{
		WithID("brandlight.api.upstream"),
		WithStatus(status),
	}, opts...)...)
}

// Timeout reports a single outbound request exceeding its deadline.
func Timeout(msg string, opts ...Option) *AppError {
	return New(msg, append([]Option{
		WithID("brandlight.api.timeout"),
		WithStatus(http.StatusRequestTimeout),
	}, opts...)...)
}

// Storage reports an artifact upload failure.
func Storage(msg string, opts ...Option) *AppError {
	return New(msg, append([]Option{
		WithID("storage.upload.failed"),
		WithStatus(http.StatusInternalServerError),
	}, opts...)...)
}

// StatusCode extracts the HTTP status carried by err, defaulting to 500.
func StatusCode(err error) int {
	var appErr *AppError
	if stderr.As(err, &appErr) && appErr.StatusCode != 0 {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}

// ErrorID extracts the stable id carried by err, defaulting to "app.internal".
func ErrorID(err error) string {
	var appErr *AppError
	if stderr.As(err, &appErr) && appErr.ID != "" {
		return appErr.ID
	}
	return "app.internal"
}

// Details returns the deepest human-readable message of err.
func Details(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func Is(err, target error) bool     { return stderr.Is(err, target) }
func As(err error, target any) bool { return stderr.As(err, target) }
