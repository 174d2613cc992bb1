package users

import "context"

// Repository persists accounts. Create returns ErrEmailTaken on a
// duplicate email; lookups return ErrNotFound.
type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}
