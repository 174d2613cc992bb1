package api

import (
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/tefa-events/server/internal/api/handlers"
	"github.com/tefa-events/server/internal/api/middleware"
	"github.com/tefa-events/server/internal/audit"
	"github.com/tefa-events/server/internal/auth"
	"github.com/tefa-events/server/internal/config"
	"github.com/tefa-events/server/internal/domain/events"
	"github.com/tefa-events/server/internal/domain/orders"
	"github.com/tefa-events/server/internal/domain/pushtokens"
	"github.com/tefa-events/server/internal/domain/users"
	"github.com/tefa-events/server/internal/metrics"
)

// Dependencies carries everything the router needs. main builds it
// once; tests build it with fakes.
type Dependencies struct {
	Config     config.Config
	Logger     zerolog.Logger
	Pool       *pgxpool.Pool
	Tokens     *auth.JWTManager
	Users      *users.Service
	Events     *events.Service
	Orders     *orders.Service
	PushTokens *pushtokens.Service
}

// NewRouter assembles the HTTP surface. Read routes on the event
// catalog are public; everything else requires a Bearer token.
func NewRouter(deps Dependencies) http.Handler {
	authHandler := handlers.NewAuthHandler(deps.Users)
	eventsHandler := handlers.NewEventsHandler(deps.Events)
	ordersHandler := handlers.NewOrdersHandler(deps.Orders)
	pushHandler := handlers.NewPushTokensHandler(deps.PushTokens)

	authed := middleware.Auth(deps.Tokens)
	limit := middleware.RateLimit(deps.Config.RateLimit)
	userTier := middleware.WithRateLimitTier(middleware.TierUser)
	loginTier := middleware.WithRateLimitTier(middleware.TierLogin)
	audited := middleware.AuditTrail(audit.NewLogger(deps.Logger))

	// Tier assignment wraps the limiter so the limiter sees it. The
	// audit trail sits inside auth so it sees the actor.
	public := func(h http.HandlerFunc) http.Handler {
		return limit(h)
	}
	login := func(h http.HandlerFunc) http.Handler {
		return loginTier(limit(audited(h)))
	}
	user := func(h http.HandlerFunc) http.Handler {
		return userTier(limit(authed(audited(h))))
	}
	organizer := func(h http.HandlerFunc) http.Handler {
		return userTier(limit(authed(audited(middleware.RequireOrganizer()(h)))))
	}

	mux := http.NewServeMux()

	mux.Handle("/healthz", handlers.Healthz())
	mux.Handle("/readyz", handlers.Readyz(deps.Pool))

	mux.Handle("POST /api/v1/auth/register", login(authHandler.Register))
	mux.Handle("POST /api/v1/auth/login", login(authHandler.Login))
	mux.Handle("POST /api/v1/auth/logout", user(authHandler.Logout))
	mux.Handle("GET /api/v1/auth/me", user(authHandler.Me))

	mux.Handle("GET /api/v1/events", public(eventsHandler.List))
	mux.Handle("GET /api/v1/events/{id}", public(eventsHandler.Get))
	mux.Handle("POST /api/v1/events", organizer(eventsHandler.Create))
	mux.Handle("PUT /api/v1/events/{id}", user(eventsHandler.Update))
	mux.Handle("DELETE /api/v1/events/{id}", user(eventsHandler.Delete))

	mux.Handle("GET /api/v1/orders", user(ordersHandler.List))
	mux.Handle("POST /api/v1/orders", user(ordersHandler.Create))
	mux.Handle("GET /api/v1/orders/{id}", user(ordersHandler.Get))
	mux.Handle("PUT /api/v1/orders/{id}", user(ordersHandler.UpdateStatus))
	mux.Handle("DELETE /api/v1/orders/{id}", user(ordersHandler.Delete))
	mux.Handle("GET /api/v1/me/orders", user(ordersHandler.MyOrders))

	mux.Handle("GET /api/v1/me/push-tokens", user(pushHandler.List))
	mux.Handle("POST /api/v1/me/push-tokens", user(pushHandler.Register))
	mux.Handle("PUT /api/v1/me/push-tokens/{id}", user(pushHandler.Update))
	mux.Handle("DELETE /api/v1/me/push-tokens/{id}", user(pushHandler.Delete))
	mux.Handle("POST /api/v1/me/push-tokens/refresh", user(pushHandler.Refresh))
	mux.Handle("POST /api/v1/me/push-tokens/deactivate-all", user(pushHandler.DeactivateAll))

	var handler http.Handler = mux
	handler = middleware.RequestSize(deps.Config.Server.MaxRequestBody)(handler)
	handler = middleware.CORS(deps.Config.CORS, deps.Logger)(handler)
	handler = metrics.HTTPMiddleware(handler)
	handler = middleware.RequestLogging()(handler)
	if deps.Config.Tracing.Enabled {
		handler = middleware.Tracing(handler)
	}
	handler = middleware.CorrelationID(deps.Logger)(handler)
	return handler
}
