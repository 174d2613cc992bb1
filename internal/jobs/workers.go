package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/riverqueue/river"
	"github.com/rs/zerolog"

	"github.com/tefa-events/server/internal/domain/orders"
	"github.com/tefa-events/server/internal/domain/pushtokens"
)

type ReconciliationArgs struct{}

func (ReconciliationArgs) Kind() string { return JobKindReconciliation }

type PushTokenCleanupArgs struct{}

func (PushTokenCleanupArgs) Kind() string { return JobKindPushTokenCleanup }

// ReconciliationWorker audits event seat counters against active orders
// and optionally repairs any drift it finds.
type ReconciliationWorker struct {
	river.WorkerDefaults[ReconciliationArgs]
	Orders *orders.Service
	Logger zerolog.Logger
	Repair bool
}

func (ReconciliationWorker) Kind() string { return JobKindReconciliation }

func (w ReconciliationWorker) Work(ctx context.Context, job *river.Job[ReconciliationArgs]) error {
	if w.Orders == nil {
		return fmt.Errorf("orders service not configured")
	}

	drifts, err := w.Orders.Reconcile(ctx, w.Logger, w.Repair)
	if err != nil {
		return fmt.Errorf("reconcile counters: %w", err)
	}

	if len(drifts) > 0 {
		w.Logger.Warn().
			Int("drifted_events", len(drifts)).
			Bool("repaired", w.Repair).
			Msg("counter reconciliation found drift")
	}
	return nil
}

// PushTokenCleanupWorker deactivates push tokens that have not been
// used within the configured idle window.
type PushTokenCleanupWorker struct {
	river.WorkerDefaults[PushTokenCleanupArgs]
	Tokens  *pushtokens.Service
	Logger  zerolog.Logger
	MaxIdle time.Duration
}

func (PushTokenCleanupWorker) Kind() string { return JobKindPushTokenCleanup }

func (w PushTokenCleanupWorker) Work(ctx context.Context, job *river.Job[PushTokenCleanupArgs]) error {
	if w.Tokens == nil {
		return fmt.Errorf("push token service not configured")
	}

	deactivated, err := w.Tokens.DeactivateStale(ctx, w.MaxIdle)
	if err != nil {
		return fmt.Errorf("deactivate stale push tokens: %w", err)
	}

	if deactivated > 0 {
		w.Logger.Info().
			Int64("deactivated", deactivated).
			Dur("max_idle", w.MaxIdle).
			Msg("stale push tokens deactivated")
	}
	return nil
}

// WorkerDeps carries the services the background workers run against.
type WorkerDeps struct {
	Orders           *orders.Service
	PushTokens       *pushtokens.Service
	Logger           zerolog.Logger
	ReconcileRepair  bool
	PushTokenMaxIdle time.Duration
}

func NewWorkers(deps WorkerDeps) *river.Workers {
	workers := river.NewWorkers()
	river.AddWorker[ReconciliationArgs](workers, ReconciliationWorker{
		Orders: deps.Orders,
		Logger: deps.Logger,
		Repair: deps.ReconcileRepair,
	})
	river.AddWorker[PushTokenCleanupArgs](workers, PushTokenCleanupWorker{
		Tokens:  deps.PushTokens,
		Logger:  deps.Logger,
		MaxIdle: deps.PushTokenMaxIdle,
	})
	return workers
}
