package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/tefa-events/server/internal/audit"
)

// AuditTrail records every mutating request after it completes, with
// the authenticated actor when one is present. Reads pass through
// untouched.
func AuditTrail(logger *audit.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if logger == nil || !mutating(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			rw := &responseWriter{ResponseWriter: w}
			next.ServeHTTP(rw, r)

			entry := audit.Entry{
				Action:       auditAction(r),
				ResourceType: resourceType(r.URL.Path),
				ResourceID:   r.PathValue("id"),
				IPAddress:    clientKey(r),
				Status:       "success",
			}
			if rw.status >= 400 {
				entry.Status = "failure"
				entry.Details = map[string]string{"http_status": fmt.Sprintf("%d", rw.status)}
			}
			if actor, ok := ActorFromContext(r.Context()); ok {
				entry.ActorID = actor.ID
				entry.ActorRole = string(actor.Role)
			}
			logger.Log(entry)
		})
	}
}

func mutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

func auditAction(r *http.Request) string {
	return strings.ToLower(r.Method) + " " + r.URL.Path
}

// resourceType pulls the collection segment out of an API path, e.g.
// /api/v1/orders/123 -> orders.
func resourceType(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for i, p := range parts {
		if p == "v1" && i+1 < len(parts) {
			return parts[i+1]
		}
	}
	return ""
}
