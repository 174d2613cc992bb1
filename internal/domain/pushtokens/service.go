package pushtokens

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tefa-events/server/internal/auth"
	"github.com/tefa-events/server/internal/metrics"
)

// Service manages a user's device tokens. Delivery of notifications is
// out of scope; this is bookkeeping only.
type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

type RegisterInput struct {
	Token      string `json:"token"`
	DeviceType string `json:"device_type"`
	DeviceName string `json:"device_name"`
}

type UpdateInput struct {
	DeviceName *string `json:"device_name"`
	IsActive   *bool   `json:"is_active"`
}

type RefreshInput struct {
	OldToken string `json:"old_token"`
	NewToken string `json:"new_token"`
}

func (s *Service) List(ctx context.Context, actor auth.Actor) ([]PushToken, error) {
	return s.repo.ListByUser(ctx, actor.ID)
}

// Register records a device token for the caller. Registering a token
// the caller already holds refreshes the existing row instead of
// failing, so clients can re-register on every app start.
func (s *Service) Register(ctx context.Context, actor auth.Actor, input RegisterInput) (*PushToken, error) {
	token := strings.TrimSpace(input.Token)
	if token == "" {
		return nil, ErrTokenRequired
	}
	deviceType := DeviceType(strings.ToLower(input.DeviceType))
	if !deviceType.Valid() {
		return nil, ErrInvalidDeviceType
	}

	now := s.now().UTC()
	record := &PushToken{
		ID:         uuid.New().String(),
		UserID:     actor.ID,
		Token:      token,
		DeviceType: deviceType,
		DeviceName: input.DeviceName,
		IsActive:   true,
		LastUsedAt: now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Upsert(ctx, record); err != nil {
		return nil, fmt.Errorf("upsert push token: %w", err)
	}
	return record, nil
}

func (s *Service) Update(ctx context.Context, actor auth.Actor, id string, input UpdateInput) (*PushToken, error) {
	record, err := s.repo.Get(ctx, actor.ID, id)
	if err != nil {
		return nil, err
	}

	if input.DeviceName != nil {
		record.DeviceName = *input.DeviceName
	}
	if input.IsActive != nil {
		record.IsActive = *input.IsActive
	}
	record.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, record); err != nil {
		return nil, fmt.Errorf("update push token: %w", err)
	}
	return record, nil
}

func (s *Service) Delete(ctx context.Context, actor auth.Actor, id string) error {
	return s.repo.Delete(ctx, actor.ID, id)
}

// Refresh swaps a rotated token value in place, keeping the row's
// identity. FCM rotates tokens without warning; clients send old and
// new together.
func (s *Service) Refresh(ctx context.Context, actor auth.Actor, input RefreshInput) (*PushToken, error) {
	oldToken := strings.TrimSpace(input.OldToken)
	newToken := strings.TrimSpace(input.NewToken)
	if oldToken == "" || newToken == "" {
		return nil, ErrTokenRequired
	}

	record, err := s.repo.GetByToken(ctx, actor.ID, oldToken)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	record.Token = newToken
	record.IsActive = true
	record.LastUsedAt = now
	record.UpdatedAt = now

	if err := s.repo.Update(ctx, record); err != nil {
		return nil, fmt.Errorf("refresh push token: %w", err)
	}
	return record, nil
}

// DeactivateAll flips every active token for the caller, for logout
// from all devices.
func (s *Service) DeactivateAll(ctx context.Context, actor auth.Actor) (int64, error) {
	n, err := s.repo.DeactivateAll(ctx, actor.ID)
	if err != nil {
		return 0, fmt.Errorf("deactivate push tokens: %w", err)
	}
	metrics.PushTokensDeactivated.Add(float64(n))
	return n, nil
}

// DeactivateStale flips tokens idle longer than maxIdle. Called from
// the periodic cleanup job.
func (s *Service) DeactivateStale(ctx context.Context, maxIdle time.Duration) (int64, error) {
	cutoff := s.now().UTC().Add(-maxIdle)
	n, err := s.repo.DeactivateStale(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("deactivate stale push tokens: %w", err)
	}
	metrics.PushTokensDeactivated.Add(float64(n))
	return n, nil
}
