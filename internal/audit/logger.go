// Package audit records who changed what through the API. Entries are
// structured log lines on a dedicated component so they can be shipped
// and retained separately from request logs.
package audit

import (
	"time"

	"github.com/rs/zerolog"
)

// Entry represents a single audit log entry with structured fields
type Entry struct {
	Timestamp    time.Time
	Action       string
	ActorID      string
	ActorRole    string
	ResourceType string
	ResourceID   string
	IPAddress    string
	Status       string // "success" or "failure"
	Details      map[string]string
}

// Logger provides structured audit logging for mutating operations
type Logger struct {
	log zerolog.Logger
}

// NewLogger creates a new audit logger on top of the service logger.
func NewLogger(base zerolog.Logger) *Logger {
	return &Logger{
		log: base.With().Str("component", "audit").Logger(),
	}
}

// Log writes an audit entry to the log output
func (l *Logger) Log(entry Entry) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	evt := l.log.Info()
	if entry.Status == "failure" {
		evt = l.log.Warn()
	}

	evt = evt.
		Time("timestamp", entry.Timestamp).
		Str("action", entry.Action).
		Str("actor_id", entry.ActorID).
		Str("actor_role", entry.ActorRole).
		Str("ip_address", entry.IPAddress).
		Str("status", entry.Status)
	if entry.ResourceType != "" {
		evt = evt.Str("resource_type", entry.ResourceType)
	}
	if entry.ResourceID != "" {
		evt = evt.Str("resource_id", entry.ResourceID)
	}
	if len(entry.Details) > 0 {
		d := zerolog.Dict()
		for k, v := range entry.Details {
			d = d.Str(k, v)
		}
		evt = evt.Dict("details", d)
	}
	evt.Msg("audit")
}

// Success logs a successful mutating operation
func (l *Logger) Success(action, actorID, actorRole, resourceType, resourceID, ipAddress string, details map[string]string) {
	l.Log(Entry{
		Action:       action,
		ActorID:      actorID,
		ActorRole:    actorRole,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IPAddress:    ipAddress,
		Status:       "success",
		Details:      details,
	})
}

// Failure logs a rejected or failed mutating operation
func (l *Logger) Failure(action, actorID, actorRole, resourceType, resourceID, ipAddress string, details map[string]string) {
	l.Log(Entry{
		Action:       action,
		ActorID:      actorID,
		ActorRole:    actorRole,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IPAddress:    ipAddress,
		Status:       "failure",
		Details:      details,
	})
}
