package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/tefa-events/server/internal/api/middleware"
	"github.com/tefa-events/server/internal/api/respond"
	"github.com/tefa-events/server/internal/domain/users"
)

type AuthHandler struct {
	Service *users.Service
}

func NewAuthHandler(service *users.Service) *AuthHandler {
	return &AuthHandler{Service: service}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input users.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respond.BadRequest(w, "Invalid request body")
		return
	}

	result, err := h.Service.Register(r.Context(), input)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.Created(w, "Registration successful", result)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input users.LoginInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respond.BadRequest(w, "Invalid request body")
		return
	}

	result, err := h.Service.Login(r.Context(), input)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, "Login successful", result)
}

// Logout acknowledges the client discarding its token. Tokens are
// stateless JWTs, so there is nothing to revoke server side.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.ActorFromContext(r.Context()); !ok {
		respond.Unauthorized(w, "Authentication required")
		return
	}
	respond.OK(w, "Logout successful", nil)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		respond.Unauthorized(w, "Authentication required")
		return
	}

	user, err := h.Service.Get(r.Context(), actor.ID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, "Profile retrieved successfully", user)
}
