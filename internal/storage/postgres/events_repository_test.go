package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tefa-events/server/internal/api/pagination"
	"github.com/tefa-events/server/internal/auth"
	"github.com/tefa-events/server/internal/domain/events"
	"github.com/tefa-events/server/internal/domain/orders"
)

func TestEventRepository_CRUD(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := NewEventRepository(pool)

	creator := createTestUser(t, pool, auth.RoleOrganizer)
	event := createTestEvent(t, pool, creator.ID, 75000, 20)

	got, err := repo.Get(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, event.Title, got.Title)
	assert.Equal(t, 75000.0, got.Price)
	assert.Equal(t, 0, got.RegisteredParticipants)

	got.Title = "Renamed " + uniqueSuffix()
	got.Status = events.StatusDraft
	got.UpdatedAt = time.Now().UTC()
	require.NoError(t, repo.Update(ctx, got))

	reread, err := repo.Get(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, got.Title, reread.Title)
	assert.Equal(t, events.StatusDraft, reread.Status)

	require.NoError(t, repo.Delete(ctx, event.ID))
	_, err = repo.Get(ctx, event.ID)
	assert.ErrorIs(t, err, events.ErrNotFound)
}

func TestEventRepository_GetNotFound(t *testing.T) {
	pool := testPool(t)
	repo := NewEventRepository(pool)

	_, err := repo.Get(context.Background(), "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, events.ErrNotFound)
}

func TestEventRepository_ListSearch(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := NewEventRepository(pool)

	creator := createTestUser(t, pool, auth.RoleOrganizer)
	needle := "Xylograph-" + uniqueSuffix()

	event := createTestEvent(t, pool, creator.ID, 0, 10)
	event.Title = "Workshop " + needle
	event.UpdatedAt = time.Now().UTC()
	require.NoError(t, repo.Update(ctx, event))
	createTestEvent(t, pool, creator.ID, 0, 10)

	items, total, err := repo.List(ctx, events.Filters{Search: needle}, pagination.Params{Page: 1, PerPage: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, event.ID, items[0].ID)

	// Case-insensitive and matches location too.
	event.Location = "Gedung " + needle
	event.Title = "Plain workshop"
	require.NoError(t, repo.Update(ctx, event))
	items, _, err = repo.List(ctx, events.Filters{Search: needle}, pagination.Params{Page: 1, PerPage: 10})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, event.ID, items[0].ID)
}

func TestEventRepository_ListStatusFilterAndPaging(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := NewEventRepository(pool)

	creator := createTestUser(t, pool, auth.RoleOrganizer)
	marker := "Paging-" + uniqueSuffix()
	for i := 0; i < 3; i++ {
		event := createTestEvent(t, pool, creator.ID, 0, 10)
		event.Category = marker
		event.Status = events.StatusDraft
		require.NoError(t, repo.Update(ctx, event))
	}

	items, total, err := repo.List(ctx, events.Filters{Search: marker, Status: events.StatusDraft},
		pagination.Params{Page: 1, PerPage: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, items, 2)

	items, _, err = repo.List(ctx, events.Filters{Search: marker, Status: events.StatusDraft},
		pagination.Params{Page: 2, PerPage: 2})
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestEventRepository_DeleteBlockedByOrders(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := NewEventRepository(pool)

	creator := createTestUser(t, pool, auth.RoleOrganizer)
	registrant := createTestUser(t, pool, auth.RoleParticipant)
	event := createTestEvent(t, pool, creator.ID, 0, 10)

	svc := orders.NewService(NewOrderRepository(pool))
	order, err := svc.CreateRegistration(ctx, registrant.Actor(), orders.CreateInput{EventID: event.ID})
	require.NoError(t, err)

	assert.ErrorIs(t, repo.Delete(ctx, event.ID), events.ErrHasOrders)

	// A cancelled order still blocks deletion; any order row does.
	_, err = svc.TransitionStatus(ctx, creator.Actor(), order.ID, orders.TransitionInput{Status: "cancelled"})
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Delete(ctx, event.ID), events.ErrHasOrders)

	require.NoError(t, svc.DeleteRegistration(ctx, registrant.Actor(), order.ID))
	assert.NoError(t, repo.Delete(ctx, event.ID))
}
