package events

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/tefa-events/server/internal/api/pagination"
	"github.com/tefa-events/server/internal/auth"
)

type Service struct {
	repo     Repository
	validate *validator.Validate
	now      func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo:     repo,
		validate: validator.New(),
		now:      time.Now,
	}
}

// CreateInput is the catalog's create payload. Field validation is
// declarative; cross-field date rules live in checkDates.
type CreateInput struct {
	Title                string    `json:"title" validate:"required,max=255"`
	Description          string    `json:"description" validate:"required"`
	Location             string    `json:"location" validate:"required,max=255"`
	Category             string    `json:"category" validate:"required,max=100"`
	ImageURL             string    `json:"image_url" validate:"omitempty,url"`
	Price                float64   `json:"price" validate:"gte=0"`
	MaxParticipants      int       `json:"max_participants" validate:"required,gte=1"`
	StartDate            time.Time `json:"start_date" validate:"required"`
	EndDate              time.Time `json:"end_date" validate:"required"`
	RegistrationDeadline time.Time `json:"registration_deadline" validate:"required"`
	Status               string    `json:"status"`
}

// UpdateInput carries partial updates; nil fields are left untouched.
type UpdateInput struct {
	Title                *string    `json:"title" validate:"omitempty,min=1,max=255"`
	Description          *string    `json:"description" validate:"omitempty,min=1"`
	Location             *string    `json:"location" validate:"omitempty,min=1,max=255"`
	Category             *string    `json:"category" validate:"omitempty,min=1,max=100"`
	ImageURL             *string    `json:"image_url" validate:"omitempty,url"`
	Price                *float64   `json:"price" validate:"omitempty,gte=0"`
	MaxParticipants      *int       `json:"max_participants" validate:"omitempty,gte=1"`
	StartDate            *time.Time `json:"start_date"`
	EndDate              *time.Time `json:"end_date"`
	RegistrationDeadline *time.Time `json:"registration_deadline"`
	Status               *string    `json:"status"`
}

func (s *Service) List(ctx context.Context, filters Filters, page pagination.Params) ([]Event, int64, error) {
	return s.repo.List(ctx, filters, page)
}

func (s *Service) Get(ctx context.Context, id string) (*Event, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, actor auth.Actor, input CreateInput) (*Event, error) {
	if !auth.IsOrganizer(actor) {
		return nil, ErrUnauthorized
	}

	if err := s.validate.Struct(input); err != nil {
		return nil, validationFields(err)
	}

	status := StatusPublished
	if input.Status != "" {
		status = Status(strings.ToLower(input.Status))
	}

	verr := newValidationError()
	if !status.Valid() {
		verr.Fields["status"] = "must be one of draft, published, cancelled, completed"
	}
	checkDates(verr, input.StartDate, input.EndDate, input.RegistrationDeadline)
	if !input.StartDate.IsZero() && !input.StartDate.After(s.now()) {
		verr.Fields["start_date"] = "must be in the future"
	}
	if len(verr.Fields) > 0 {
		return nil, verr
	}

	now := s.now().UTC()
	event := &Event{
		ID:                   uuid.New().String(),
		Title:                input.Title,
		Description:          input.Description,
		Location:             input.Location,
		Category:             input.Category,
		ImageURL:             input.ImageURL,
		Price:                input.Price,
		MaxParticipants:      input.MaxParticipants,
		StartDate:            input.StartDate,
		EndDate:              input.EndDate,
		RegistrationDeadline: input.RegistrationDeadline,
		Status:               status,
		CreatedBy:            actor.ID,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if err := s.repo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

func (s *Service) Update(ctx context.Context, actor auth.Actor, id string, input UpdateInput) (*Event, error) {
	event, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !auth.CanManageEvent(actor, event.CreatedBy) {
		return nil, ErrUnauthorized
	}

	if err := s.validate.Struct(input); err != nil {
		return nil, validationFields(err)
	}

	applyUpdate(event, input)

	verr := newValidationError()
	if !event.Status.Valid() {
		verr.Fields["status"] = "must be one of draft, published, cancelled, completed"
	}
	if event.MaxParticipants < event.RegisteredParticipants {
		verr.Fields["max_participants"] = fmt.Sprintf(
			"cannot be below the %d participants already registered", event.RegisteredParticipants)
	}
	checkDates(verr, event.StartDate, event.EndDate, event.RegistrationDeadline)
	if len(verr.Fields) > 0 {
		return nil, verr
	}

	event.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return event, nil
}

func (s *Service) Delete(ctx context.Context, actor auth.Actor, id string) error {
	event, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !auth.CanManageEvent(actor, event.CreatedBy) {
		return ErrUnauthorized
	}
	return s.repo.Delete(ctx, id)
}

func applyUpdate(event *Event, input UpdateInput) {
	if input.Title != nil {
		event.Title = *input.Title
	}
	if input.Description != nil {
		event.Description = *input.Description
	}
	if input.Location != nil {
		event.Location = *input.Location
	}
	if input.Category != nil {
		event.Category = *input.Category
	}
	if input.ImageURL != nil {
		event.ImageURL = *input.ImageURL
	}
	if input.Price != nil {
		event.Price = *input.Price
	}
	if input.MaxParticipants != nil {
		event.MaxParticipants = *input.MaxParticipants
	}
	if input.StartDate != nil {
		event.StartDate = *input.StartDate
	}
	if input.EndDate != nil {
		event.EndDate = *input.EndDate
	}
	if input.RegistrationDeadline != nil {
		event.RegistrationDeadline = *input.RegistrationDeadline
	}
	if input.Status != nil {
		event.Status = Status(strings.ToLower(*input.Status))
	}
}

func checkDates(verr *ValidationError, start, end, deadline time.Time) {
	if start.IsZero() || end.IsZero() || deadline.IsZero() {
		return
	}
	if end.Before(start) {
		verr.Fields["end_date"] = "must be on or after start_date"
	}
	if !deadline.Before(start) {
		verr.Fields["registration_deadline"] = "must be before start_date"
	}
}

func validationFields(err error) error {
	verr := newValidationError()
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		verr.Fields["request"] = err.Error()
		return verr
	}
	for _, fe := range fieldErrs {
		verr.Fields[snakeCase(fe.Field())] = validationMessage(fe)
	}
	return verr
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "url":
		return "must be a valid URL"
	default:
		return "is invalid"
	}
}

// snakeCase maps Go field names to their json tag form. Acronym runs
// stay together: ImageURL -> image_url, not image_u_r_l.
func snakeCase(field string) string {
	runes := []rune(field)
	var b strings.Builder
	for i, r := range runes {
		if r >= 'A' && r <= 'Z' {
			prevLower := i > 0 && runes[i-1] >= 'a' && runes[i-1] <= 'z'
			nextLower := i+1 < len(runes) && runes[i+1] >= 'a' && runes[i+1] <= 'z'
			if i > 0 && (prevLower || nextLower) {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
