package errors

import "net/http"

// NewDBInternalError wraps a database failure with the failing operation id.
func NewDBInternalError(op string, cause error) *AppError {
	return New("database operation failed",
		WithID("store.postgres."+op),
		WithStatus(http.StatusInternalServerError),
		WithCause(cause),
	)
}

// NewDBNoRowsError reports a lookup that matched nothing.
func NewDBNoRowsError(op string) *AppError {
	return New("record not found",
		WithID("store.postgres."+op),
		WithStatus(http.StatusNotFound),
	)
}
