package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/tefa-events/server/internal/api/pagination"
	"github.com/tefa-events/server/internal/auth"
	"github.com/tefa-events/server/internal/metrics"
)

// Service is the registration coordinator. It owns the order state
// machine and every adjustment to event capacity counters.
type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

type CreateInput struct {
	EventID string `json:"event_id"`
	Notes   string `json:"notes"`
}

type TransitionInput struct {
	Status string  `json:"status"`
	Notes  *string `json:"notes"`
}

// CreateRegistration admits a registrant to an event. Preconditions are
// checked in a fixed order, each with a distinct failure; on success the
// order insert and the counter increment commit together.
func (s *Service) CreateRegistration(ctx context.Context, actor auth.Actor, input CreateInput) (*Order, error) {
	if input.EventID == "" {
		return nil, ErrEventNotFound
	}

	var order *Order
	err := s.repo.InTx(ctx, func(tx Tx) error {
		event, err := tx.EventSnapshot(ctx, input.EventID)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		if !now.Before(event.RegistrationDeadline) {
			return ErrRegistrationClosed
		}
		if event.RegisteredParticipants >= event.MaxParticipants {
			return ErrEventFull
		}

		active, err := tx.HasActiveOrder(ctx, actor.ID, input.EventID)
		if err != nil {
			return fmt.Errorf("check active order: %w", err)
		}
		if active {
			return ErrAlreadyRegistered
		}

		// The read above orders the failure modes; this conditional
		// increment is what actually guards capacity under concurrency.
		reserved, err := tx.ReserveSeat(ctx, input.EventID)
		if err != nil {
			return fmt.Errorf("reserve seat: %w", err)
		}
		if !reserved {
			return ErrEventFull
		}

		seq, err := tx.NextSequence(ctx, now)
		if err != nil {
			return fmt.Errorf("order number sequence: %w", err)
		}

		status := StatusPending
		if event.Price == 0 {
			status = StatusConfirmed
		}

		order = &Order{
			ID:           uuid.New().String(),
			OrderNumber:  FormatOrderNumber(now, seq),
			UserID:       actor.ID,
			EventID:      input.EventID,
			Amount:       event.Price,
			Status:       status,
			Notes:        input.Notes,
			RegisteredAt: now,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		return tx.Insert(ctx, order)
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrEventFull):
			metrics.RegistrationRejections.WithLabelValues("event_full").Inc()
		case errors.Is(err, ErrRegistrationClosed):
			metrics.RegistrationRejections.WithLabelValues("deadline_passed").Inc()
		case errors.Is(err, ErrAlreadyRegistered):
			metrics.RegistrationRejections.WithLabelValues("already_registered").Inc()
		}
		return nil, err
	}

	metrics.RegistrationsTotal.WithLabelValues(string(order.Status)).Inc()
	return order, nil
}

// TransitionStatus moves an order through its state machine. Only
// organizers may transition; the counter delta, status, and notes are
// applied in one transaction.
func (s *Service) TransitionStatus(ctx context.Context, actor auth.Actor, orderID string, input TransitionInput) (*Order, error) {
	if !auth.IsOrganizer(actor) {
		return nil, ErrUnauthorized
	}

	newStatus := Status(input.Status)
	if !newStatus.Valid() {
		return nil, ErrInvalidStatus
	}

	var updated *Order
	err := s.repo.InTx(ctx, func(tx Tx) error {
		order, err := tx.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}

		if err := tx.UpdateStatus(ctx, orderID, newStatus, input.Notes); err != nil {
			return fmt.Errorf("update status: %w", err)
		}

		if delta := counterDelta(order.Status, newStatus); delta != 0 {
			if err := tx.AdjustCounter(ctx, order.EventID, delta); err != nil {
				return fmt.Errorf("adjust counter: %w", err)
			}
		}

		order.Status = newStatus
		if input.Notes != nil {
			order.Notes = *input.Notes
		}
		order.UpdatedAt = s.now().UTC()
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteRegistration removes an order. When the deleted order is still
// counted (any status except cancelled) the event counter is
// decremented in the same transaction, compensating the increment made
// at creation.
func (s *Service) DeleteRegistration(ctx context.Context, actor auth.Actor, orderID string) error {
	return s.repo.InTx(ctx, func(tx Tx) error {
		order, err := tx.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if !auth.CanManageOrder(actor, order.UserID) {
			return ErrUnauthorized
		}

		if order.Status.counted() {
			if err := tx.AdjustCounter(ctx, order.EventID, -1); err != nil {
				return fmt.Errorf("adjust counter: %w", err)
			}
		}
		return tx.Delete(ctx, orderID)
	})
}

// Get returns one order, visible to its registrant and to organizers.
func (s *Service) Get(ctx context.Context, actor auth.Actor, orderID string) (*Order, error) {
	order, err := s.repo.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !auth.CanManageOrder(actor, order.UserID) {
		return nil, ErrUnauthorized
	}
	return order, nil
}

// List returns orders. Participants only ever see their own; organizers
// see everything and may filter.
func (s *Service) List(ctx context.Context, actor auth.Actor, filters Filters, page pagination.Params) ([]Order, int64, pagination.Meta, error) {
	if !auth.IsOrganizer(actor) {
		filters.UserID = actor.ID
	}
	items, total, err := s.repo.List(ctx, filters, page)
	if err != nil {
		return nil, 0, pagination.Meta{}, err
	}
	return items, total, pagination.NewMeta(page, total, len(items)), nil
}

// MyOrders returns the caller's order history regardless of role.
func (s *Service) MyOrders(ctx context.Context, actor auth.Actor, page pagination.Params) ([]Order, pagination.Meta, error) {
	items, total, err := s.repo.List(ctx, Filters{UserID: actor.ID}, page)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return items, pagination.NewMeta(page, total, len(items)), nil
}

// Reconcile audits every event counter against a ledger recount and,
// when repair is set, resets drifted counters. The hot path never
// recomputes counters; this is the offline drift detector.
func (s *Service) Reconcile(ctx context.Context, logger zerolog.Logger, repair bool) ([]CounterDrift, error) {
	drift, err := s.repo.CounterAudit(ctx)
	if err != nil {
		return nil, fmt.Errorf("counter audit: %w", err)
	}

	metrics.CounterDriftEvents.Set(float64(len(drift)))
	for _, d := range drift {
		logger.Warn().
			Str("event_id", d.EventID).
			Int("recorded", d.Recorded).
			Int("actual", d.Actual).
			Msg("participant counter drift")
	}

	if repair && len(drift) > 0 {
		repaired, err := s.repo.RepairCounters(ctx)
		if err != nil {
			return drift, fmt.Errorf("repair counters: %w", err)
		}
		metrics.CountersRepaired.Add(float64(repaired))
		logger.Info().Int64("events", repaired).Msg("participant counters repaired")
	}
	return drift, nil
}

// counterDelta maps a status transition to its counter adjustment.
// Cancelling a counted confirmed/completed order releases a seat;
// reviving a cancelled order retakes one. Everything else, including
// pending→confirmed (already counted at creation), leaves the counter
// alone.
func counterDelta(old, next Status) int {
	if old == next {
		return 0
	}
	if (old == StatusConfirmed || old == StatusCompleted) && next == StatusCancelled {
		return -1
	}
	if old == StatusCancelled && (next == StatusConfirmed || next == StatusCompleted) {
		return 1
	}
	return 0
}
