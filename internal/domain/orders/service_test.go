package orders

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tefa-events/server/internal/api/pagination"
	"github.com/tefa-events/server/internal/auth"
)

// fakeRepo is an in-memory ledger with snapshot-rollback transactions,
// so atomicity assertions hold the same way they do against Postgres.
type fakeRepo struct {
	events    map[string]*EventSnapshot
	orders    map[string]*Order
	sequences map[string]int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		events:    make(map[string]*EventSnapshot),
		orders:    make(map[string]*Order),
		sequences: make(map[string]int),
	}
}

func (r *fakeRepo) addEvent(e EventSnapshot) {
	copied := e
	r.events[e.ID] = &copied
}

func (r *fakeRepo) snapshot() *fakeRepo {
	s := newFakeRepo()
	for k, v := range r.events {
		copied := *v
		s.events[k] = &copied
	}
	for k, v := range r.orders {
		copied := *v
		s.orders[k] = &copied
	}
	for k, v := range r.sequences {
		s.sequences[k] = v
	}
	return s
}

func (r *fakeRepo) restore(s *fakeRepo) {
	r.events = s.events
	r.orders = s.orders
	r.sequences = s.sequences
}

func (r *fakeRepo) InTx(ctx context.Context, fn func(Tx) error) error {
	saved := r.snapshot()
	if err := fn(&fakeTx{repo: r}); err != nil {
		r.restore(saved)
		return err
	}
	return nil
}

func (r *fakeRepo) Get(ctx context.Context, id string) (*Order, error) {
	order, ok := r.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *order
	return &copied, nil
}

func (r *fakeRepo) List(ctx context.Context, filters Filters, page pagination.Params) ([]Order, int64, error) {
	var items []Order
	for _, o := range r.orders {
		if filters.UserID != "" && o.UserID != filters.UserID {
			continue
		}
		if filters.EventID != "" && o.EventID != filters.EventID {
			continue
		}
		if filters.Status != "" && o.Status != filters.Status {
			continue
		}
		items = append(items, *o)
	}
	return items, int64(len(items)), nil
}

func (r *fakeRepo) CounterAudit(ctx context.Context) ([]CounterDrift, error) {
	var drift []CounterDrift
	for id, e := range r.events {
		actual := 0
		for _, o := range r.orders {
			if o.EventID == id && o.Status.counted() {
				actual++
			}
		}
		if actual != e.RegisteredParticipants {
			drift = append(drift, CounterDrift{EventID: id, Recorded: e.RegisteredParticipants, Actual: actual})
		}
	}
	return drift, nil
}

func (r *fakeRepo) RepairCounters(ctx context.Context) (int64, error) {
	drift, _ := r.CounterAudit(ctx)
	for _, d := range drift {
		r.events[d.EventID].RegisteredParticipants = d.Actual
	}
	return int64(len(drift)), nil
}

type fakeTx struct {
	repo *fakeRepo
}

func (t *fakeTx) EventSnapshot(ctx context.Context, eventID string) (*EventSnapshot, error) {
	e, ok := t.repo.events[eventID]
	if !ok {
		return nil, ErrEventNotFound
	}
	copied := *e
	return &copied, nil
}

func (t *fakeTx) HasActiveOrder(ctx context.Context, userID, eventID string) (bool, error) {
	for _, o := range t.repo.orders {
		if o.UserID == userID && o.EventID == eventID && (o.Status == StatusPending || o.Status == StatusConfirmed) {
			return true, nil
		}
	}
	return false, nil
}

func (t *fakeTx) ReserveSeat(ctx context.Context, eventID string) (bool, error) {
	e, ok := t.repo.events[eventID]
	if !ok {
		return false, ErrEventNotFound
	}
	if e.RegisteredParticipants >= e.MaxParticipants {
		return false, nil
	}
	e.RegisteredParticipants++
	return true, nil
}

func (t *fakeTx) AdjustCounter(ctx context.Context, eventID string, delta int) error {
	e, ok := t.repo.events[eventID]
	if !ok {
		return ErrEventNotFound
	}
	e.RegisteredParticipants += delta
	return nil
}

func (t *fakeTx) NextSequence(ctx context.Context, day time.Time) (int, error) {
	key := day.UTC().Format("20060102")
	t.repo.sequences[key]++
	return t.repo.sequences[key], nil
}

func (t *fakeTx) Insert(ctx context.Context, order *Order) error {
	for _, o := range t.repo.orders {
		if o.OrderNumber == order.OrderNumber {
			return ErrDuplicateOrderNumber
		}
		if o.UserID == order.UserID && o.EventID == order.EventID &&
			(o.Status == StatusPending || o.Status == StatusConfirmed) {
			return ErrAlreadyRegistered
		}
	}
	copied := *order
	t.repo.orders[order.ID] = &copied
	return nil
}

func (t *fakeTx) GetForUpdate(ctx context.Context, id string) (*Order, error) {
	o, ok := t.repo.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *o
	return &copied, nil
}

func (t *fakeTx) UpdateStatus(ctx context.Context, id string, status Status, notes *string) error {
	o, ok := t.repo.orders[id]
	if !ok {
		return ErrNotFound
	}
	o.Status = status
	if notes != nil {
		o.Notes = *notes
	}
	return nil
}

func (t *fakeTx) Delete(ctx context.Context, id string) error {
	if _, ok := t.repo.orders[id]; !ok {
		return ErrNotFound
	}
	delete(t.repo.orders, id)
	return nil
}

var (
	participantA = auth.Actor{ID: "user-a", Role: auth.RoleParticipant}
	participantB = auth.Actor{ID: "user-b", Role: auth.RoleParticipant}
	organizer    = auth.Actor{ID: "org-1", Role: auth.RoleOrganizer}
)

func newTestService(repo *fakeRepo, at time.Time) *Service {
	svc := NewService(repo)
	svc.now = func() time.Time { return at }
	return svc
}

func openEvent(id string, price float64, max int) EventSnapshot {
	return EventSnapshot{
		ID:                   id,
		Price:                price,
		MaxParticipants:      max,
		RegistrationDeadline: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreateRegistration_PaidEventPending(t *testing.T) {
	repo := newFakeRepo()
	repo.addEvent(openEvent("ev-1", 25, 10))
	svc := newTestService(repo, time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))

	order, err := svc.CreateRegistration(context.Background(), participantA, CreateInput{EventID: "ev-1", Notes: "front row"})
	require.NoError(t, err)

	assert.Equal(t, StatusPending, order.Status)
	assert.Equal(t, 25.0, order.Amount)
	assert.Equal(t, "front row", order.Notes)
	assert.Equal(t, "ORD-20260801-0001", order.OrderNumber)
	assert.Equal(t, 1, repo.events["ev-1"].RegisteredParticipants)
}

func TestCreateRegistration_FreeEventConfirmed(t *testing.T) {
	repo := newFakeRepo()
	repo.addEvent(openEvent("ev-1", 0, 10))
	svc := newTestService(repo, time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))

	order, err := svc.CreateRegistration(context.Background(), participantA, CreateInput{EventID: "ev-1"})
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, order.Status)
}

func TestCreateRegistration_PreconditionOrder(t *testing.T) {
	deadline := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	t.Run("event not found", func(t *testing.T) {
		svc := newTestService(newFakeRepo(), deadline.Add(-time.Hour))
		_, err := svc.CreateRegistration(context.Background(), participantA, CreateInput{EventID: "missing"})
		assert.ErrorIs(t, err, ErrEventNotFound)
	})

	t.Run("registration closed", func(t *testing.T) {
		repo := newFakeRepo()
		repo.addEvent(openEvent("ev-1", 0, 10))
		svc := newTestService(repo, deadline) // now == deadline is already closed
		_, err := svc.CreateRegistration(context.Background(), participantA, CreateInput{EventID: "ev-1"})
		assert.ErrorIs(t, err, ErrRegistrationClosed)
	})

	t.Run("event full", func(t *testing.T) {
		repo := newFakeRepo()
		full := openEvent("ev-1", 0, 2)
		full.RegisteredParticipants = 2
		repo.addEvent(full)
		svc := newTestService(repo, deadline.Add(-time.Hour))
		_, err := svc.CreateRegistration(context.Background(), participantA, CreateInput{EventID: "ev-1"})
		assert.ErrorIs(t, err, ErrEventFull)
		assert.Equal(t, 2, repo.events["ev-1"].RegisteredParticipants, "rejected attempt must not change state")
	})

	t.Run("already registered", func(t *testing.T) {
		repo := newFakeRepo()
		repo.addEvent(openEvent("ev-1", 10, 10))
		svc := newTestService(repo, deadline.Add(-time.Hour))

		_, err := svc.CreateRegistration(context.Background(), participantA, CreateInput{EventID: "ev-1"})
		require.NoError(t, err)

		_, err = svc.CreateRegistration(context.Background(), participantA, CreateInput{EventID: "ev-1"})
		assert.ErrorIs(t, err, ErrAlreadyRegistered)
		assert.Equal(t, 1, repo.events["ev-1"].RegisteredParticipants)
	})
}

func TestCreateRegistration_CancelledOrderAllowsReRegistration(t *testing.T) {
	repo := newFakeRepo()
	repo.addEvent(openEvent("ev-1", 10, 10))
	svc := newTestService(repo, time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))

	first, err := svc.CreateRegistration(context.Background(), participantA, CreateInput{EventID: "ev-1"})
	require.NoError(t, err)

	_, err = svc.TransitionStatus(context.Background(), organizer, first.ID, TransitionInput{Status: "cancelled"})
	require.NoError(t, err)

	second, err := svc.CreateRegistration(context.Background(), participantA, CreateInput{EventID: "ev-1"})
	require.NoError(t, err)
	assert.NotEqual(t, first.OrderNumber, second.OrderNumber)
}

func TestOrderNumbers_SequentialWithinDay(t *testing.T) {
	repo := newFakeRepo()
	repo.addEvent(openEvent("ev-1", 10, 100))
	day := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestService(repo, day)

	seen := make(map[string]bool)
	for i := 1; i <= 5; i++ {
		actor := auth.Actor{ID: fmt.Sprintf("user-%d", i), Role: auth.RoleParticipant}
		order, err := svc.CreateRegistration(context.Background(), actor, CreateInput{EventID: "ev-1"})
		require.NoError(t, err)

		want := fmt.Sprintf("ORD-20260801-%04d", i)
		assert.Equal(t, want, order.OrderNumber)
		assert.True(t, ValidOrderNumber(order.OrderNumber))
		assert.False(t, seen[order.OrderNumber], "order numbers must be unique")
		seen[order.OrderNumber] = true
	}
}

func TestTransitionStatus_CounterAdjustments(t *testing.T) {
	tests := []struct {
		name  string
		from  Status
		to    Status
		delta int
	}{
		{"confirmed to cancelled releases seat", StatusConfirmed, StatusCancelled, -1},
		{"completed to cancelled releases seat", StatusCompleted, StatusCancelled, -1},
		{"cancelled to confirmed retakes seat", StatusCancelled, StatusConfirmed, 1},
		{"cancelled to completed retakes seat", StatusCancelled, StatusCompleted, 1},
		{"pending to confirmed unchanged", StatusPending, StatusConfirmed, 0},
		{"confirmed to completed unchanged", StatusConfirmed, StatusCompleted, 0},
		{"no-op unchanged", StatusConfirmed, StatusConfirmed, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepo()
			event := openEvent("ev-1", 10, 10)
			event.RegisteredParticipants = 5
			repo.addEvent(event)
			repo.orders["ord-1"] = &Order{ID: "ord-1", EventID: "ev-1", UserID: "user-a", Status: tt.from}

			svc := newTestService(repo, time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))
			updated, err := svc.TransitionStatus(context.Background(), organizer, "ord-1", TransitionInput{Status: string(tt.to)})
			require.NoError(t, err)

			assert.Equal(t, tt.to, updated.Status)
			assert.Equal(t, 5+tt.delta, repo.events["ev-1"].RegisteredParticipants)
		})
	}
}

func TestTransitionStatus_Authorization(t *testing.T) {
	repo := newFakeRepo()
	repo.orders["ord-1"] = &Order{ID: "ord-1", EventID: "ev-1", UserID: "user-a", Status: StatusPending}
	svc := newTestService(repo, time.Now())

	// Owning registrant may delete, never transition.
	_, err := svc.TransitionStatus(context.Background(), participantA, "ord-1", TransitionInput{Status: "confirmed"})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestTransitionStatus_RejectsUnknownStatus(t *testing.T) {
	svc := newTestService(newFakeRepo(), time.Now())
	_, err := svc.TransitionStatus(context.Background(), organizer, "ord-1", TransitionInput{Status: "refunded"})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestTransitionStatus_NotFound(t *testing.T) {
	svc := newTestService(newFakeRepo(), time.Now())
	_, err := svc.TransitionStatus(context.Background(), organizer, "missing", TransitionInput{Status: "confirmed"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteRegistration_DecrementsCountedOrders(t *testing.T) {
	for _, status := range []Status{StatusPending, StatusConfirmed, StatusCompleted} {
		t.Run(string(status), func(t *testing.T) {
			repo := newFakeRepo()
			event := openEvent("ev-1", 10, 10)
			event.RegisteredParticipants = 3
			repo.addEvent(event)
			repo.orders["ord-1"] = &Order{ID: "ord-1", EventID: "ev-1", UserID: "user-a", Status: status}

			svc := newTestService(repo, time.Now())
			require.NoError(t, svc.DeleteRegistration(context.Background(), participantA, "ord-1"))

			assert.Equal(t, 2, repo.events["ev-1"].RegisteredParticipants)
			_, err := repo.Get(context.Background(), "ord-1")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestDeleteRegistration_CancelledLeavesCounter(t *testing.T) {
	repo := newFakeRepo()
	event := openEvent("ev-1", 10, 10)
	event.RegisteredParticipants = 3
	repo.addEvent(event)
	repo.orders["ord-1"] = &Order{ID: "ord-1", EventID: "ev-1", UserID: "user-a", Status: StatusCancelled}

	svc := newTestService(repo, time.Now())
	require.NoError(t, svc.DeleteRegistration(context.Background(), participantA, "ord-1"))
	assert.Equal(t, 3, repo.events["ev-1"].RegisteredParticipants, "cancelled order already released its seat")
}

func TestDeleteRegistration_Authorization(t *testing.T) {
	repo := newFakeRepo()
	repo.addEvent(openEvent("ev-1", 10, 10))
	repo.orders["ord-1"] = &Order{ID: "ord-1", EventID: "ev-1", UserID: "user-a", Status: StatusConfirmed}
	svc := newTestService(repo, time.Now())

	err := svc.DeleteRegistration(context.Background(), participantB, "ord-1")
	assert.ErrorIs(t, err, ErrUnauthorized)

	require.NoError(t, svc.DeleteRegistration(context.Background(), organizer, "ord-1"))
}

func TestGet_Visibility(t *testing.T) {
	repo := newFakeRepo()
	repo.orders["ord-1"] = &Order{ID: "ord-1", EventID: "ev-1", UserID: "user-a", Status: StatusConfirmed}
	svc := newTestService(repo, time.Now())

	_, err := svc.Get(context.Background(), participantA, "ord-1")
	assert.NoError(t, err)

	_, err = svc.Get(context.Background(), participantB, "ord-1")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.Get(context.Background(), organizer, "ord-1")
	assert.NoError(t, err)
}

func TestList_ParticipantsOnlySeeOwnOrders(t *testing.T) {
	repo := newFakeRepo()
	repo.orders["ord-1"] = &Order{ID: "ord-1", EventID: "ev-1", UserID: "user-a", Status: StatusConfirmed}
	repo.orders["ord-2"] = &Order{ID: "ord-2", EventID: "ev-1", UserID: "user-b", Status: StatusConfirmed}
	svc := newTestService(repo, time.Now())

	mine, _, _, err := svc.List(context.Background(), participantA, Filters{}, pagination.Params{Page: 1, PerPage: 20})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "user-a", mine[0].UserID)

	all, _, _, err := svc.List(context.Background(), organizer, Filters{}, pagination.Params{Page: 1, PerPage: 20})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestReconcile_DetectsAndRepairsDrift(t *testing.T) {
	repo := newFakeRepo()
	event := openEvent("ev-1", 10, 10)
	event.RegisteredParticipants = 7 // ledger below says 1
	repo.addEvent(event)
	repo.orders["ord-1"] = &Order{ID: "ord-1", EventID: "ev-1", UserID: "user-a", Status: StatusConfirmed}

	svc := newTestService(repo, time.Now())

	drift, err := svc.Reconcile(context.Background(), zerolog.Nop(), false)
	require.NoError(t, err)
	require.Len(t, drift, 1)
	assert.Equal(t, 7, drift[0].Recorded)
	assert.Equal(t, 1, drift[0].Actual)
	assert.Equal(t, 7, repo.events["ev-1"].RegisteredParticipants, "audit alone must not mutate")

	_, err = svc.Reconcile(context.Background(), zerolog.Nop(), true)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.events["ev-1"].RegisteredParticipants)
}

// Full lifecycle of a one-seat free event: register, reject at capacity,
// free the seat by deletion, register again.
func TestSingleSeatLifecycle(t *testing.T) {
	repo := newFakeRepo()
	repo.addEvent(openEvent("ev-1", 0, 1))
	svc := newTestService(repo, time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()

	orderA, err := svc.CreateRegistration(ctx, participantA, CreateInput{EventID: "ev-1"})
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, orderA.Status)
	assert.Equal(t, 1, repo.events["ev-1"].RegisteredParticipants)

	_, err = svc.CreateRegistration(ctx, participantB, CreateInput{EventID: "ev-1"})
	assert.ErrorIs(t, err, ErrEventFull)

	require.NoError(t, svc.DeleteRegistration(ctx, participantA, orderA.ID))
	assert.Equal(t, 0, repo.events["ev-1"].RegisteredParticipants)

	orderB, err := svc.CreateRegistration(ctx, participantB, CreateInput{EventID: "ev-1"})
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, orderB.Status)
	assert.Equal(t, 1, repo.events["ev-1"].RegisteredParticipants)
}

func TestCounterDelta(t *testing.T) {
	if counterDelta(StatusPending, StatusCancelled) != 0 {
		t.Error("pending to cancelled should not adjust the counter")
	}
	if counterDelta(StatusConfirmed, StatusCancelled) != -1 {
		t.Error("confirmed to cancelled should release a seat")
	}
	if counterDelta(StatusCancelled, StatusCompleted) != 1 {
		t.Error("cancelled to completed should retake a seat")
	}
	if counterDelta(StatusCancelled, StatusCancelled) != 0 {
		t.Error("no-op transition should not adjust the counter")
	}
}

func TestValidOrderNumber(t *testing.T) {
	valid := []string{"ORD-20260801-0001", "ORD-19991231-9999"}
	invalid := []string{"", "ORD-2026080-0001", "ORD-20260801-001", "ord-20260801-0001", "ORD-20260801-00010"}

	for _, v := range valid {
		assert.True(t, ValidOrderNumber(v), v)
	}
	for _, v := range invalid {
		assert.False(t, ValidOrderNumber(v), v)
	}
}

func TestFormatOrderNumber(t *testing.T) {
	day := time.Date(2026, 8, 30, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, "ORD-20260830-0042", FormatOrderNumber(day, 42))
}

var errBoom = errors.New("boom")

func TestCreateRegistration_RollsBackOnInsertFailure(t *testing.T) {
	repo := newFakeRepo()
	repo.addEvent(openEvent("ev-1", 10, 10))
	svc := newTestService(repo, time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))

	// Seed a colliding active order under a different ID so Insert fails
	// after the seat was reserved; the reservation must roll back.
	repo.orders["pre"] = &Order{ID: "pre", EventID: "ev-1", UserID: "user-z", Status: StatusPending}
	repo.events["ev-1"].RegisteredParticipants = 1

	failing := &insertFailingRepo{fakeRepo: repo}
	svc = newTestService(repo, time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))
	svc.repo = failing

	_, err := svc.CreateRegistration(context.Background(), participantA, CreateInput{EventID: "ev-1"})
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, 1, repo.events["ev-1"].RegisteredParticipants, "reserved seat must be rolled back")
}

type insertFailingRepo struct {
	*fakeRepo
}

func (r *insertFailingRepo) InTx(ctx context.Context, fn func(Tx) error) error {
	saved := r.fakeRepo.snapshot()
	if err := fn(&failingTx{fakeTx{repo: r.fakeRepo}}); err != nil {
		r.fakeRepo.restore(saved)
		return err
	}
	return nil
}

type failingTx struct {
	fakeTx
}

func (t *failingTx) Insert(ctx context.Context, order *Order) error {
	return errBoom
}
