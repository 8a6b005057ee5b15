package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrSessionNotFound is returned when a session code is unknown or no longer active.
	ErrSessionNotFound = fmt.Errorf("no active study session for this code")
	// ErrSessionAlreadyExists signals a code collision at registration time.
	// Retried internally by the lifecycle controller, never reaches a caller.
	ErrSessionAlreadyExists = fmt.Errorf("study session already registered")
	// ErrAccessDenied is returned when the requester is not connected to any current member.
	ErrAccessDenied = fmt.Errorf("not allowed to join this study session")
	// ErrInvalidSessionCode rejects malformed codes before any registry lookup.
	ErrInvalidSessionCode = fmt.Errorf("session code must be 12 ASCII letters")
	// ErrCodeSpaceExhausted is returned once the code generation attempt budget is spent.
	ErrCodeSpaceExhausted = fmt.Errorf("could not allocate a unique session code")
	// ErrStorageUnavailable wraps registry/store failures so they are never
	// conflated with a plain not-found.
	ErrStorageUnavailable = fmt.Errorf("session storage unavailable")
	// ErrUnauthenticated is returned when no valid identity accompanies a request.
	ErrUnauthenticated = fmt.Errorf("missing or invalid credentials")
	// ErrInvalidPassword rejects passwords that fail the complexity rules at seeding time.
	ErrInvalidPassword = fmt.Errorf("password does not meet complexity requirements")
	// ErrWorkerPanic marks a supervised worker that crashed and was recovered.
	ErrWorkerPanic = fmt.Errorf("worker panic")
)

// MapToHTTPStatus translates the domain taxonomy into an HTTP status code.
// Called only at the delivery boundary; services deal in sentinel errors.
func MapToHTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, ErrInvalidSessionCode), errors.Is(err, ErrInvalidPassword):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrCodeSpaceExhausted), errors.Is(err, ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
