package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tefa-events/server/internal/auth"
	"github.com/tefa-events/server/internal/domain/users"
)

func TestUserRepository_CreateAndLookup(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := NewUserRepository(pool)

	user := createTestUser(t, pool, auth.RoleParticipant)

	byID, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, byID.Email)
	assert.Equal(t, auth.RoleParticipant, byID.Role)

	byEmail, err := repo.GetByEmail(ctx, user.Email)
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := NewUserRepository(pool)

	user := createTestUser(t, pool, auth.RoleParticipant)

	dup := *user
	dup.ID = "11111111-1111-1111-1111-111111111111"
	err := repo.Create(ctx, &dup)
	assert.ErrorIs(t, err, users.ErrEmailTaken)
}

func TestUserRepository_NotFound(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := NewUserRepository(pool)

	_, err := repo.GetByID(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, users.ErrNotFound)

	_, err = repo.GetByEmail(ctx, "nobody-"+uniqueSuffix()+"@example.com")
	assert.ErrorIs(t, err, users.ErrNotFound)
}
