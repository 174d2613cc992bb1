package events

import "errors"

var (
	// ErrNotFound is returned when an event lookup fails.
	ErrNotFound = errors.New("event not found")

	// ErrHasOrders is returned when deleting an event that still has
	// orders against it, regardless of their status.
	ErrHasOrders = errors.New("cannot delete event with existing orders")

	// ErrUnauthorized is returned when the caller lacks the role or
	// ownership required for a catalog mutation.
	ErrUnauthorized = errors.New("unauthorized")
)

// ValidationError carries field-level messages for a rejected request.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "event validation failed"
}

func newValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}
