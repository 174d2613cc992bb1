package jobs

import (
	"context"
	"testing"

	"github.com/riverqueue/river"
	"github.com/rs/zerolog"
)

func TestReconciliationArgs_Kind(t *testing.T) {
	args := ReconciliationArgs{}
	if args.Kind() != JobKindReconciliation {
		t.Errorf("Kind() = %q, want %q", args.Kind(), JobKindReconciliation)
	}
}

func TestPushTokenCleanupArgs_Kind(t *testing.T) {
	args := PushTokenCleanupArgs{}
	if args.Kind() != JobKindPushTokenCleanup {
		t.Errorf("Kind() = %q, want %q", args.Kind(), JobKindPushTokenCleanup)
	}
}

func TestReconciliationWorker_RequiresService(t *testing.T) {
	worker := ReconciliationWorker{Logger: zerolog.Nop()}
	err := worker.Work(context.Background(), &river.Job[ReconciliationArgs]{})
	if err == nil {
		t.Fatal("Work() with nil orders service should fail")
	}
}

func TestPushTokenCleanupWorker_RequiresService(t *testing.T) {
	worker := PushTokenCleanupWorker{Logger: zerolog.Nop()}
	err := worker.Work(context.Background(), &river.Job[PushTokenCleanupArgs]{})
	if err == nil {
		t.Fatal("Work() with nil push token service should fail")
	}
}

func TestNewWorkers(t *testing.T) {
	workers := NewWorkers(WorkerDeps{Logger: zerolog.Nop()})
	if workers == nil {
		t.Fatal("NewWorkers() returned nil")
	}
}
