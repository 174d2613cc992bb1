package orders

import (
	"context"
	"time"

	"github.com/tefa-events/server/internal/api/pagination"
)

// Repository is the ledger's persistence boundary, implemented by
// internal/storage/postgres.
type Repository interface {
	Get(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context, filters Filters, page pagination.Params) ([]Order, int64, error)

	// InTx runs fn inside one database transaction. The coordinator
	// performs every order-row mutation and its matching counter
	// adjustment through a single InTx call; partial application is a
	// correctness violation.
	InTx(ctx context.Context, fn func(Tx) error) error

	// CounterAudit recompares each event's registered_participants
	// against a recount of its counted orders and reports mismatches.
	CounterAudit(ctx context.Context) ([]CounterDrift, error)

	// RepairCounters resets drifted counters to the recounted values,
	// returning the number of events corrected.
	RepairCounters(ctx context.Context) (int64, error)
}

// Tx is the transactional surface the coordinator drives.
type Tx interface {
	// EventSnapshot reads the capacity fields for an event, returning
	// ErrEventNotFound when it does not exist.
	EventSnapshot(ctx context.Context, eventID string) (*EventSnapshot, error)

	// HasActiveOrder reports an existing pending or confirmed order for
	// the (user, event) pair.
	HasActiveOrder(ctx context.Context, userID, eventID string) (bool, error)

	// ReserveSeat atomically increments registered_participants only
	// while it is below max_participants. It returns false when the
	// event is full; the caller rolls the transaction back.
	ReserveSeat(ctx context.Context, eventID string) (bool, error)

	// AdjustCounter applies a signed delta to registered_participants.
	AdjustCounter(ctx context.Context, eventID string, delta int) error

	// NextSequence returns the next value of the per-day order number
	// sequence, locking the day's row for the rest of the transaction.
	NextSequence(ctx context.Context, day time.Time) (int, error)

	Insert(ctx context.Context, order *Order) error

	// GetForUpdate locks the order row for the transaction, returning
	// ErrNotFound when it does not exist.
	GetForUpdate(ctx context.Context, id string) (*Order, error)

	UpdateStatus(ctx context.Context, id string, status Status, notes *string) error

	Delete(ctx context.Context, id string) error
}
