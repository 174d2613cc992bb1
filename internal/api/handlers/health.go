package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Healthz reports liveness: the process is up and serving.
func Healthz() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, http.StatusOK, "ok", nil)
	})
}

// Readyz reports readiness: the database answers within a short
// deadline. Returns 503 until it does, so load balancers hold traffic.
func Readyz(pool *pgxpool.Pool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if pool == nil {
			writeHealth(w, http.StatusServiceUnavailable, "unavailable", map[string]string{"database": "no pool"})
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		start := time.Now()
		if err := pool.Ping(ctx); err != nil {
			writeHealth(w, http.StatusServiceUnavailable, "unavailable", map[string]string{"database": err.Error()})
			return
		}
		writeHealth(w, http.StatusOK, "ok", map[string]string{
			"database":   "ok",
			"db_latency": time.Since(start).String(),
		})
	})
}

func writeHealth(w http.ResponseWriter, status int, state string, checks map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":    state,
		"checks":    checks,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
