package backend

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized is returned for 401 responses. Callers treat it as a
	// hard session failure; any other API error is transient.
	ErrUnauthorized = errors.New("backend: unauthorized")

	// ErrNotFound is returned for 404 responses.
	ErrNotFound = errors.New("backend: not found")
)

// APIError carries the server-provided error payload for a failed call.
// Field is set when the backend attributes the failure to a single input
// field (e.g. the hard-delete password check).
type APIError struct {
	Status  int
	Message string
	Field   string
}

func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("backend: %d %s (field %s)", e.Status, e.Message, e.Field)
	}
	return fmt.Sprintf("backend: %d %s", e.Status, e.Message)
}

// Unwrap maps well-known statuses to sentinel errors so callers can use
// errors.Is without inspecting the status themselves.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	}
	return nil
}

// IsUnauthorized reports whether err represents a 401 response.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// StatusOf returns the HTTP status carried by err, or 0 for transport errors.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
