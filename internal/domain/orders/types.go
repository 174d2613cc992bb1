// Package orders is the order ledger and the registration coordinator.
// Every mutation that touches an event's registered_participants counter
// goes through this package inside a single database transaction; the
// counter is never adjusted anywhere else.
package orders

import "time"

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	default:
		return false
	}
}

// counted reports whether an order in this status is included in its
// event's registered_participants counter. Creation always increments,
// and only a cancellation transition decrements, so everything except
// cancelled is counted.
func (s Status) counted() bool {
	return s != StatusCancelled
}

type Order struct {
	ID           string    `json:"id"`
	OrderNumber  string    `json:"order_number"`
	UserID       string    `json:"user_id"`
	EventID      string    `json:"event_id"`
	Amount       float64   `json:"amount"`
	Status       Status    `json:"status"`
	Notes        string    `json:"notes,omitempty"`
	RegisteredAt time.Time `json:"registered_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Filters narrows order listings.
type Filters struct {
	UserID  string
	EventID string
	Status  Status
}

// EventSnapshot is the slice of the event row the coordinator reads
// when admitting a registration.
type EventSnapshot struct {
	ID                     string
	Price                  float64
	MaxParticipants        int
	RegisteredParticipants int
	RegistrationDeadline   time.Time
}

// CounterDrift is one event whose stored counter disagrees with the
// recount from the ledger.
type CounterDrift struct {
	EventID  string `json:"event_id"`
	Recorded int    `json:"recorded"`
	Actual   int    `json:"actual"`
}
