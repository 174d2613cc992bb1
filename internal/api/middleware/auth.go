package middleware

import (
	"context"
	"net/http"

	"github.com/tefa-events/server/internal/api/respond"
	"github.com/tefa-events/server/internal/auth"
)

const actorKey contextKey = "actor"

// Auth validates the Bearer token and puts the resulting actor into
// the request context. Requests without a valid token get 401.
func Auth(tokens *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := auth.TokenFromHeader(r.Header.Get("Authorization"))
			if err != nil {
				respond.Unauthorized(w, "Authentication required")
				return
			}
			claims, err := tokens.Validate(token)
			if err != nil {
				respond.Unauthorized(w, "Invalid or expired token")
				return
			}

			actor := auth.ActorFromClaims(claims)
			ctx := context.WithValue(r.Context(), actorKey, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireOrganizer rejects callers below organizer with 403. Must run
// after Auth.
func RequireOrganizer() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				respond.Unauthorized(w, "Authentication required")
				return
			}
			if !auth.IsOrganizer(actor) {
				respond.Forbidden(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func ActorFromContext(ctx context.Context) (auth.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(auth.Actor)
	return actor, ok
}

// WithActor is a test hook for handler tests that bypass the JWT
// middleware.
func WithActor(ctx context.Context, actor auth.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}
