package orders

import "errors"

var (
	// ErrNotFound is returned when an order lookup fails.
	ErrNotFound = errors.New("order not found")

	// ErrEventNotFound is returned when registering against an event
	// that does not exist.
	ErrEventNotFound = errors.New("event not found")

	// ErrRegistrationClosed is returned when the event's registration
	// deadline has passed.
	ErrRegistrationClosed = errors.New("registration deadline has passed")

	// ErrEventFull is returned when the event has no remaining capacity.
	ErrEventFull = errors.New("event is fully booked")

	// ErrAlreadyRegistered is returned when the registrant already has a
	// pending or confirmed order for the event.
	ErrAlreadyRegistered = errors.New("already registered for this event")

	// ErrUnauthorized is returned when the caller lacks the role or
	// ownership required for the operation.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidStatus is returned for a status value outside the
	// closed enum.
	ErrInvalidStatus = errors.New("invalid order status")

	// ErrDuplicateOrderNumber is returned when order number generation
	// collides even after the per-day sequence was consulted. It maps to
	// a conflict at the API boundary.
	ErrDuplicateOrderNumber = errors.New("duplicate order number")
)
