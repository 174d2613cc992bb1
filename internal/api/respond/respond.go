// Package respond writes the API response envelope. Every response,
// success or failure, carries {success, message, data}; errors map
// domain sentinels onto HTTP status codes in one place.
package respond

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/tefa-events/server/internal/auth"
	"github.com/tefa-events/server/internal/domain/events"
	"github.com/tefa-events/server/internal/domain/orders"
	"github.com/tefa-events/server/internal/domain/pushtokens"
	"github.com/tefa-events/server/internal/domain/users"
)

type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Errors  any    `json:"errors,omitempty"`
}

func JSON(w http.ResponseWriter, status int, message string, data any) {
	write(w, status, Envelope{Success: status < 400, Message: message, Data: data})
}

func Created(w http.ResponseWriter, message string, data any) {
	JSON(w, http.StatusCreated, message, data)
}

func OK(w http.ResponseWriter, message string, data any) {
	JSON(w, http.StatusOK, message, data)
}

// Error maps a domain error to its response. Validation errors carry
// the field map; unknown errors become an opaque 500 with the detail
// logged, never echoed.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	logger := zerolog.Ctx(r.Context())

	if verr := validationError(err); verr != nil {
		write(w, http.StatusUnprocessableEntity, Envelope{
			Success: false,
			Message: "Validation failed",
			Errors:  verr,
		})
		return
	}

	status, message := classify(err)
	if status == http.StatusInternalServerError {
		logger.Error().Err(err).Msg("internal error")
		message = "Internal server error"
	}
	write(w, status, Envelope{Success: false, Message: message})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, events.ErrNotFound),
		errors.Is(err, orders.ErrNotFound),
		errors.Is(err, orders.ErrEventNotFound),
		errors.Is(err, users.ErrNotFound),
		errors.Is(err, pushtokens.ErrNotFound):
		return http.StatusNotFound, err.Error()

	case errors.Is(err, events.ErrUnauthorized),
		errors.Is(err, orders.ErrUnauthorized):
		return http.StatusForbidden, "Forbidden"

	case errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, users.ErrInvalidCredentials):
		return http.StatusUnauthorized, err.Error()

	case errors.Is(err, orders.ErrDuplicateOrderNumber):
		return http.StatusConflict, err.Error()

	case errors.Is(err, events.ErrHasOrders),
		errors.Is(err, orders.ErrRegistrationClosed),
		errors.Is(err, orders.ErrEventFull),
		errors.Is(err, orders.ErrAlreadyRegistered),
		errors.Is(err, orders.ErrInvalidStatus),
		errors.Is(err, users.ErrEmailTaken),
		errors.Is(err, pushtokens.ErrInvalidDeviceType),
		errors.Is(err, pushtokens.ErrTokenRequired):
		return http.StatusUnprocessableEntity, err.Error()
	}
	return http.StatusInternalServerError, ""
}

// validationError unwraps the per-domain validation types to their
// field maps.
func validationError(err error) map[string]string {
	var eventsErr *events.ValidationError
	if errors.As(err, &eventsErr) {
		return eventsErr.Fields
	}
	var usersErr *users.ValidationError
	if errors.As(err, &usersErr) {
		return usersErr.Fields
	}
	return nil
}

// BadRequest is for malformed request bodies, before any domain logic.
func BadRequest(w http.ResponseWriter, message string) {
	write(w, http.StatusBadRequest, Envelope{Success: false, Message: message})
}

func Unauthorized(w http.ResponseWriter, message string) {
	write(w, http.StatusUnauthorized, Envelope{Success: false, Message: message})
}

func Forbidden(w http.ResponseWriter) {
	write(w, http.StatusForbidden, Envelope{Success: false, Message: "Forbidden"})
}

func write(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}
