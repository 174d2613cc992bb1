package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tefa-events/server/internal/api/pagination"
	"github.com/tefa-events/server/internal/domain/orders"
)

var _ orders.Repository = (*OrderRepository)(nil)

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

const orderColumns = `id, order_number, user_id, event_id, amount, status, notes,
	registered_at, created_at, updated_at`

func (r *OrderRepository) InTx(ctx context.Context, fn func(orders.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&orderTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (r *OrderRepository) Get(ctx context.Context, id string) (*orders.Order, error) {
	return scanOrderRow(r.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM orders WHERE id = $1`, orderColumns), id))
}

func (r *OrderRepository) List(ctx context.Context, filters orders.Filters, page pagination.Params) ([]orders.Order, int64, error) {
	where := "WHERE 1=1"
	args := []any{}

	if filters.UserID != "" {
		args = append(args, filters.UserID)
		where += fmt.Sprintf(" AND user_id = $%d", len(args))
	}
	if filters.EventID != "" {
		args = append(args, filters.EventID)
		where += fmt.Sprintf(" AND event_id = $%d", len(args))
	}
	if filters.Status != "" {
		args = append(args, string(filters.Status))
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}

	var total int64
	if err := r.pool.QueryRow(ctx, "SELECT count(*) FROM orders "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	args = append(args, page.Limit(), page.Offset())
	query := fmt.Sprintf(`SELECT %s FROM orders %s ORDER BY registered_at DESC, id ASC LIMIT $%d OFFSET $%d`,
		orderColumns, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	items := []orders.Order{}
	for rows.Next() {
		order, err := scanOrderRow(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	return items, total, nil
}

// CounterAudit recomputes each event's participant count from the order
// ledger and returns the events whose stored counter disagrees.
func (r *OrderRepository) CounterAudit(ctx context.Context) ([]orders.CounterDrift, error) {
	rows, err := r.pool.Query(ctx, `
SELECT e.id, e.registered_participants, count(o.id) FILTER (WHERE o.status <> 'cancelled')
FROM events e
LEFT JOIN orders o ON o.event_id = e.id
GROUP BY e.id, e.registered_participants
HAVING e.registered_participants <> count(o.id) FILTER (WHERE o.status <> 'cancelled')
ORDER BY e.id`)
	if err != nil {
		return nil, fmt.Errorf("counter audit: %w", err)
	}
	defer rows.Close()

	var drift []orders.CounterDrift
	for rows.Next() {
		var d orders.CounterDrift
		if err := rows.Scan(&d.EventID, &d.Recorded, &d.Actual); err != nil {
			return nil, fmt.Errorf("scan counter drift: %w", err)
		}
		drift = append(drift, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("counter audit: %w", err)
	}
	return drift, nil
}

func (r *OrderRepository) RepairCounters(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
UPDATE events e
SET registered_participants = recount.actual, updated_at = now()
FROM (
	SELECT e.id, count(o.id) FILTER (WHERE o.status <> 'cancelled') AS actual
	FROM events e
	LEFT JOIN orders o ON o.event_id = e.id
	GROUP BY e.id
) AS recount
WHERE e.id = recount.id AND e.registered_participants <> recount.actual`)
	if err != nil {
		return 0, fmt.Errorf("repair counters: %w", err)
	}
	return tag.RowsAffected(), nil
}

type orderTx struct {
	tx pgx.Tx
}

var _ orders.Tx = (*orderTx)(nil)

func (t *orderTx) EventSnapshot(ctx context.Context, eventID string) (*orders.EventSnapshot, error) {
	var snap orders.EventSnapshot
	err := t.tx.QueryRow(ctx, `
SELECT id, price, max_participants, registered_participants, registration_deadline
FROM events WHERE id = $1`, eventID).
		Scan(&snap.ID, &snap.Price, &snap.MaxParticipants, &snap.RegisteredParticipants, &snap.RegistrationDeadline)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, orders.ErrEventNotFound
		}
		return nil, fmt.Errorf("event snapshot: %w", err)
	}
	return &snap, nil
}

func (t *orderTx) HasActiveOrder(ctx context.Context, userID, eventID string) (bool, error) {
	var exists bool
	err := t.tx.QueryRow(ctx, `
SELECT EXISTS (
	SELECT 1 FROM orders
	WHERE user_id = $1 AND event_id = $2 AND status IN ('pending', 'confirmed')
)`, userID, eventID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check active order: %w", err)
	}
	return exists, nil
}

// ReserveSeat is the capacity guard. The condition inside the UPDATE
// makes admission atomic; zero rows affected means the event is full.
func (t *orderTx) ReserveSeat(ctx context.Context, eventID string) (bool, error) {
	tag, err := t.tx.Exec(ctx, `
UPDATE events
SET registered_participants = registered_participants + 1, updated_at = now()
WHERE id = $1 AND registered_participants < max_participants`, eventID)
	if err != nil {
		return false, fmt.Errorf("reserve seat: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (t *orderTx) AdjustCounter(ctx context.Context, eventID string, delta int) error {
	tag, err := t.tx.Exec(ctx, `
UPDATE events
SET registered_participants = greatest(registered_participants + $2, 0), updated_at = now()
WHERE id = $1`, eventID, delta)
	if err != nil {
		return fmt.Errorf("adjust counter: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return orders.ErrEventNotFound
	}
	return nil
}

// NextSequence allocates the next order number for the day. The upsert
// row-locks the day's counter, so concurrent inserts serialize here and
// each gets a distinct value.
func (t *orderTx) NextSequence(ctx context.Context, day time.Time) (int, error) {
	var seq int
	err := t.tx.QueryRow(ctx, `
INSERT INTO order_sequences (day, last_value)
VALUES ($1, 1)
ON CONFLICT (day) DO UPDATE SET last_value = order_sequences.last_value + 1
RETURNING last_value`, day.UTC().Format("2006-01-02")).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next order sequence: %w", err)
	}
	return seq, nil
}

func (t *orderTx) Insert(ctx context.Context, order *orders.Order) error {
	_, err := t.tx.Exec(ctx, `
INSERT INTO orders (id, order_number, user_id, event_id, amount, status, notes,
	registered_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		order.ID, order.OrderNumber, order.UserID, order.EventID, order.Amount,
		string(order.Status), order.Notes, order.RegisteredAt, order.CreatedAt, order.UpdatedAt)
	if err != nil {
		switch {
		case isUniqueViolation(err, "orders_active_user_event_idx"):
			return orders.ErrAlreadyRegistered
		case isUniqueViolation(err, "orders_order_number_key"):
			return orders.ErrDuplicateOrderNumber
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (t *orderTx) GetForUpdate(ctx context.Context, id string) (*orders.Order, error) {
	return scanOrderRow(t.tx.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM orders WHERE id = $1 FOR UPDATE`, orderColumns), id))
}

func (t *orderTx) UpdateStatus(ctx context.Context, id string, status orders.Status, notes *string) error {
	tag, err := t.tx.Exec(ctx, `
UPDATE orders SET status = $2, notes = coalesce($3, notes), updated_at = now()
WHERE id = $1`, id, string(status), notes)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return orders.ErrNotFound
	}
	return nil
}

func (t *orderTx) Delete(ctx context.Context, id string) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return orders.ErrNotFound
	}
	return nil
}

func scanOrderRow(row pgx.Row) (*orders.Order, error) {
	var o orders.Order
	var status string
	err := row.Scan(&o.ID, &o.OrderNumber, &o.UserID, &o.EventID, &o.Amount,
		&status, &o.Notes, &o.RegisteredAt, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, orders.ErrNotFound
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}
	o.Status = orders.Status(status)
	return &o, nil
}
