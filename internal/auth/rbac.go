// Package auth holds the access policy: the closed role enumeration,
// capability predicates consulted by the domain services, JWT issuance
// and validation, and password hashing.
package auth

import "strings"

type Role string

const (
	RoleParticipant Role = "participant"
	RoleOrganizer   Role = "organizer"
	RoleAdmin       Role = "admin"
)

// Actor is the authenticated caller as seen by domain services. The
// HTTP layer builds it from validated JWT claims; services trust it.
type Actor struct {
	ID   string
	Role Role
}

// NormalizeRole maps arbitrary input to a member of the closed role
// enum. Unknown values fall back to participant, the least privilege.
func NormalizeRole(role string) Role {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case string(RoleAdmin):
		return RoleAdmin
	case string(RoleOrganizer):
		return RoleOrganizer
	case string(RoleParticipant):
		return RoleParticipant
	default:
		return RoleParticipant
	}
}

func ValidRole(role string) bool {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case string(RoleAdmin), string(RoleOrganizer), string(RoleParticipant):
		return true
	default:
		return false
	}
}

// IsOrganizer reports management rights over all events and orders.
// Admins hold every organizer capability.
func IsOrganizer(actor Actor) bool {
	return actor.Role == RoleOrganizer || actor.Role == RoleAdmin
}

// CanManageEvent allows the event's creator and any organizer.
func CanManageEvent(actor Actor, creatorID string) bool {
	if IsOrganizer(actor) {
		return true
	}
	return actor.ID != "" && actor.ID == creatorID
}

// CanManageOrder allows the owning registrant and any organizer. Status
// transitions are organizer-only; callers gate those with IsOrganizer.
func CanManageOrder(actor Actor, registrantID string) bool {
	if IsOrganizer(actor) {
		return true
	}
	return actor.ID != "" && actor.ID == registrantID
}
