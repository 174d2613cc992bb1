package pushtokens

import (
	"context"
	"time"
)

// Repository persists device tokens. Lookups are always scoped to a
// user; a token ID from another user's row reads as ErrNotFound.
type Repository interface {
	ListByUser(ctx context.Context, userID string) ([]PushToken, error)
	Get(ctx context.Context, userID, id string) (*PushToken, error)
	GetByToken(ctx context.Context, userID, token string) (*PushToken, error)

	// Upsert inserts the row or, when (user_id, token) already exists,
	// refreshes device fields, reactivates it, and bumps last_used_at.
	Upsert(ctx context.Context, t *PushToken) error

	Update(ctx context.Context, t *PushToken) error
	Delete(ctx context.Context, userID, id string) error

	// DeactivateAll flips every active row for the user and returns how
	// many were flipped.
	DeactivateAll(ctx context.Context, userID string) (int64, error)

	// DeactivateStale flips active rows whose last_used_at is older
	// than the cutoff, across all users. Used by the cleanup job.
	DeactivateStale(ctx context.Context, cutoff time.Time) (int64, error)
}
