// Package events is the event catalog: capacity-bounded offerings that
// participants register for. The registered_participants counter on an
// event is owned by the registration coordinator (the orders package)
// and is never mutated here.
package events

import "time"

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusCancelled, StatusCompleted:
		return true
	default:
		return false
	}
}

type Event struct {
	ID                     string    `json:"id"`
	Title                  string    `json:"title"`
	Description            string    `json:"description"`
	Location               string    `json:"location"`
	Category               string    `json:"category"`
	ImageURL               string    `json:"image_url,omitempty"`
	Price                  float64   `json:"price"`
	MaxParticipants        int       `json:"max_participants"`
	RegisteredParticipants int       `json:"registered_participants"`
	StartDate              time.Time `json:"start_date"`
	EndDate                time.Time `json:"end_date"`
	RegistrationDeadline   time.Time `json:"registration_deadline"`
	Status                 Status    `json:"status"`
	CreatedBy              string    `json:"created_by"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

// Filters narrows event listings. Search matches title, description,
// location, and category.
type Filters struct {
	Search string
	Status Status
}
