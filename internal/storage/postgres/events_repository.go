package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tefa-events/server/internal/api/pagination"
	"github.com/tefa-events/server/internal/domain/events"
)

var _ events.Repository = (*EventRepository)(nil)

type EventRepository struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

const eventColumns = `id, title, description, location, category, image_url, price,
	max_participants, registered_participants, start_date, end_date,
	registration_deadline, status, created_by, created_at, updated_at`

func (r *EventRepository) List(ctx context.Context, filters events.Filters, page pagination.Params) ([]events.Event, int64, error) {
	where := "WHERE 1=1"
	args := []any{}

	if filters.Status != "" {
		args = append(args, filters.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		n := len(args)
		where += fmt.Sprintf(
			" AND (title ILIKE $%d OR description ILIKE $%d OR location ILIKE $%d OR category ILIKE $%d)",
			n, n, n, n)
	}

	var total int64
	if err := r.pool.QueryRow(ctx, "SELECT count(*) FROM events "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}

	args = append(args, page.Limit(), page.Offset())
	query := fmt.Sprintf(`SELECT %s FROM events %s ORDER BY start_date ASC, id ASC LIMIT $%d OFFSET $%d`,
		eventColumns, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	items := []events.Event{}
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *event)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	return items, total, nil
}

func (r *EventRepository) Get(ctx context.Context, id string) (*events.Event, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM events WHERE id = $1`, eventColumns), id)
	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, events.ErrNotFound
		}
		return nil, err
	}
	return event, nil
}

func (r *EventRepository) Create(ctx context.Context, event *events.Event) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO events (id, title, description, location, category, image_url, price,
	max_participants, registered_participants, start_date, end_date,
	registration_deadline, status, created_by, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		event.ID, event.Title, event.Description, event.Location, event.Category,
		event.ImageURL, event.Price, event.MaxParticipants, event.RegisteredParticipants,
		event.StartDate, event.EndDate, event.RegistrationDeadline,
		string(event.Status), event.CreatedBy, event.CreatedAt, event.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (r *EventRepository) Update(ctx context.Context, event *events.Event) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE events SET title = $2, description = $3, location = $4, category = $5,
	image_url = $6, price = $7, max_participants = $8, start_date = $9,
	end_date = $10, registration_deadline = $11, status = $12, updated_at = $13
WHERE id = $1`,
		event.ID, event.Title, event.Description, event.Location, event.Category,
		event.ImageURL, event.Price, event.MaxParticipants, event.StartDate,
		event.EndDate, event.RegistrationDeadline, string(event.Status), event.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return events.ErrNotFound
	}
	return nil
}

// Delete removes an event unless any order references it, in any
// status. The existence check and the delete share one transaction so
// a concurrent registration cannot slip between them.
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var hasOrders bool
	err = tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE event_id = $1)`, id).Scan(&hasOrders)
	if err != nil {
		return fmt.Errorf("check event orders: %w", err)
	}
	if hasOrders {
		return events.ErrHasOrders
	}

	tag, err := tx.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return events.ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func scanEvent(row pgx.Row) (*events.Event, error) {
	var e events.Event
	var status string
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.Location, &e.Category,
		&e.ImageURL, &e.Price, &e.MaxParticipants, &e.RegisteredParticipants,
		&e.StartDate, &e.EndDate, &e.RegistrationDeadline, &status,
		&e.CreatedBy, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan event: %w", err)
	}
	e.Status = events.Status(status)
	return &e, nil
}
