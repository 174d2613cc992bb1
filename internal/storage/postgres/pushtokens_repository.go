package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tefa-events/server/internal/domain/pushtokens"
)

var _ pushtokens.Repository = (*PushTokenRepository)(nil)

type PushTokenRepository struct {
	pool *pgxpool.Pool
}

func NewPushTokenRepository(pool *pgxpool.Pool) *PushTokenRepository {
	return &PushTokenRepository{pool: pool}
}

const pushTokenColumns = `id, user_id, token, device_type, device_name, is_active,
	last_used_at, created_at, updated_at`

func (r *PushTokenRepository) ListByUser(ctx context.Context, userID string) ([]pushtokens.PushToken, error) {
	rows, err := r.pool.Query(ctx, fmt.Sprintf(
		`SELECT %s FROM push_tokens WHERE user_id = $1 ORDER BY created_at ASC`, pushTokenColumns), userID)
	if err != nil {
		return nil, fmt.Errorf("list push tokens: %w", err)
	}
	defer rows.Close()

	items := []pushtokens.PushToken{}
	for rows.Next() {
		t, err := scanPushToken(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list push tokens: %w", err)
	}
	return items, nil
}

func (r *PushTokenRepository) Get(ctx context.Context, userID, id string) (*pushtokens.PushToken, error) {
	return scanPushToken(r.pool.QueryRow(ctx, fmt.Sprintf(
		`SELECT %s FROM push_tokens WHERE user_id = $1 AND id = $2`, pushTokenColumns), userID, id))
}

func (r *PushTokenRepository) GetByToken(ctx context.Context, userID, token string) (*pushtokens.PushToken, error) {
	return scanPushToken(r.pool.QueryRow(ctx, fmt.Sprintf(
		`SELECT %s FROM push_tokens WHERE user_id = $1 AND token = $2`, pushTokenColumns), userID, token))
}

// Upsert keys on (user_id, token); re-registering an existing token
// refreshes its device fields and reactivates it. The caller's record
// is overwritten with the row that actually won, keeping its original
// ID on conflict.
func (r *PushTokenRepository) Upsert(ctx context.Context, t *pushtokens.PushToken) error {
	row := r.pool.QueryRow(ctx, `
INSERT INTO push_tokens (id, user_id, token, device_type, device_name, is_active,
	last_used_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (user_id, token) DO UPDATE SET
	device_type = excluded.device_type,
	device_name = excluded.device_name,
	is_active = true,
	last_used_at = excluded.last_used_at,
	updated_at = excluded.updated_at
RETURNING `+pushTokenColumns,
		t.ID, t.UserID, t.Token, string(t.DeviceType), t.DeviceName,
		t.IsActive, t.LastUsedAt, t.CreatedAt, t.UpdatedAt)

	saved, err := scanPushToken(row)
	if err != nil {
		return fmt.Errorf("upsert push token: %w", err)
	}
	*t = *saved
	return nil
}

func (r *PushTokenRepository) Update(ctx context.Context, t *pushtokens.PushToken) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE push_tokens
SET token = $3, device_name = $4, is_active = $5, last_used_at = $6, updated_at = $7
WHERE user_id = $1 AND id = $2`,
		t.UserID, t.ID, t.Token, t.DeviceName, t.IsActive, t.LastUsedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update push token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pushtokens.ErrNotFound
	}
	return nil
}

func (r *PushTokenRepository) Delete(ctx context.Context, userID, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM push_tokens WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("delete push token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pushtokens.ErrNotFound
	}
	return nil
}

func (r *PushTokenRepository) DeactivateAll(ctx context.Context, userID string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
UPDATE push_tokens SET is_active = false, updated_at = now()
WHERE user_id = $1 AND is_active`, userID)
	if err != nil {
		return 0, fmt.Errorf("deactivate push tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *PushTokenRepository) DeactivateStale(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
UPDATE push_tokens SET is_active = false, updated_at = now()
WHERE is_active AND last_used_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("deactivate stale push tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanPushToken(row pgx.Row) (*pushtokens.PushToken, error) {
	var t pushtokens.PushToken
	var deviceType string
	err := row.Scan(&t.ID, &t.UserID, &t.Token, &deviceType, &t.DeviceName,
		&t.IsActive, &t.LastUsedAt, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pushtokens.ErrNotFound
		}
		return nil, fmt.Errorf("scan push token: %w", err)
	}
	t.DeviceType = pushtokens.DeviceType(deviceType)
	return &t, nil
}
