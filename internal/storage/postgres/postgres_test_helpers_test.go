package postgres

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/tefa-events/server/internal/auth"
	"github.com/tefa-events/server/internal/domain/events"
	"github.com/tefa-events/server/internal/domain/users"
	"github.com/testcontainers/testcontainers-go"
	testpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	sharedPoolOnce sync.Once
	sharedPool     *pgxpool.Pool
	sharedPoolErr  error
)

// testPool starts one Postgres container for the whole package and runs
// the migrations against it. Tests share the database; fixtures use
// ULID-derived values to stay disjoint.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	sharedPoolOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		container, err := testpostgres.Run(ctx,
			"docker.io/postgres:16-alpine",
			testpostgres.WithDatabase("testdb"),
			testpostgres.WithUsername("testuser"),
			testpostgres.WithPassword("testpass"),
			testcontainers.WithWaitStrategy(wait.ForAll(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2),
				wait.ForListeningPort(nat.Port("5432/tcp")),
			).WithStartupTimeoutDefault(30*time.Second)),
		)
		if err != nil {
			sharedPoolErr = fmt.Errorf("start postgres container: %w", err)
			return
		}

		connStr, err := container.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			sharedPoolErr = fmt.Errorf("connection string: %w", err)
			return
		}

		if err := MigrateUp(connStr, "migrations"); err != nil {
			sharedPoolErr = err
			return
		}

		pool, err := NewPool(ctx, connStr, 10)
		if err != nil {
			sharedPoolErr = err
			return
		}
		sharedPool = pool
	})

	if sharedPoolErr != nil {
		t.Fatalf("shared postgres: %v", sharedPoolErr)
	}
	return sharedPool
}

func uniqueSuffix() string {
	return ulid.Make().String()
}

func createTestUser(t *testing.T, pool *pgxpool.Pool, role auth.Role) *users.User {
	t.Helper()

	now := time.Now().UTC()
	user := &users.User{
		ID:           uuid.New().String(),
		Name:         "Test User " + uniqueSuffix(),
		Email:        fmt.Sprintf("user-%s@example.com", uniqueSuffix()),
		PasswordHash: "$2a$12$notarealhashnotarealhashnotarealhashnotarealhashnota",
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := NewUserRepository(pool).Create(context.Background(), user); err != nil {
		t.Fatalf("create test user: %v", err)
	}
	return user
}

func createTestEvent(t *testing.T, pool *pgxpool.Pool, creatorID string, price float64, maxParticipants int) *events.Event {
	t.Helper()

	now := time.Now().UTC()
	event := &events.Event{
		ID:                   uuid.New().String(),
		Title:                "Event " + uniqueSuffix(),
		Description:          "integration fixture",
		Location:             "Hall A",
		Category:             "workshop",
		Price:                price,
		MaxParticipants:      maxParticipants,
		StartDate:            now.Add(30 * 24 * time.Hour),
		EndDate:              now.Add(31 * 24 * time.Hour),
		RegistrationDeadline: now.Add(20 * 24 * time.Hour),
		Status:               events.StatusPublished,
		CreatedBy:            creatorID,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := NewEventRepository(pool).Create(context.Background(), event); err != nil {
		t.Fatalf("create test event: %v", err)
	}
	return event
}
