package events

import (
	"context"

	"github.com/tefa-events/server/internal/api/pagination"
)

// Repository is the catalog's persistence boundary, implemented by
// internal/storage/postgres.
type Repository interface {
	List(ctx context.Context, filters Filters, page pagination.Params) ([]Event, int64, error)
	Get(ctx context.Context, id string) (*Event, error)
	Create(ctx context.Context, event *Event) error
	Update(ctx context.Context, event *Event) error

	// Delete removes the event only when it has zero associated orders;
	// it returns ErrHasOrders otherwise. The check and the delete run in
	// one transaction.
	Delete(ctx context.Context, id string) error
}
