package respond

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tefa-events/server/internal/auth"
	"github.com/tefa-events/server/internal/domain/events"
	"github.com/tefa-events/server/internal/domain/orders"
	"github.com/tefa-events/server/internal/domain/users"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{events.ErrNotFound, http.StatusNotFound},
		{orders.ErrEventNotFound, http.StatusNotFound},
		{events.ErrUnauthorized, http.StatusForbidden},
		{auth.ErrInvalidToken, http.StatusUnauthorized},
		{users.ErrInvalidCredentials, http.StatusUnauthorized},
		{orders.ErrDuplicateOrderNumber, http.StatusConflict},
		{orders.ErrEventFull, http.StatusUnprocessableEntity},
		{orders.ErrAlreadyRegistered, http.StatusUnprocessableEntity},
		{users.ErrEmailTaken, http.StatusUnprocessableEntity},
		{fmt.Errorf("driver: bad connection"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got, _ := classify(tt.err); got != tt.want {
			t.Errorf("classify(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestError_DuplicateOrderNumberConflict(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", nil)
	rec := httptest.NewRecorder()

	Error(rec, req, fmt.Errorf("insert order: %w", orders.ErrDuplicateOrderNumber))

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusConflict)
	}
	var env Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if env.Success {
		t.Error("success = true, want false")
	}
	if env.Message != orders.ErrDuplicateOrderNumber.Error() {
		t.Errorf("message = %q", env.Message)
	}
}

func TestError_UnknownErrorIsOpaque(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/events", nil)
	rec := httptest.NewRecorder()

	Error(rec, req, fmt.Errorf("pgx: connection reset"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var env Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if env.Message != "Internal server error" {
		t.Errorf("message = %q, want the opaque message", env.Message)
	}
}
