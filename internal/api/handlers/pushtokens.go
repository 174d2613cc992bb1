package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/tefa-events/server/internal/api/middleware"
	"github.com/tefa-events/server/internal/api/respond"
	"github.com/tefa-events/server/internal/domain/pushtokens"
)

type PushTokensHandler struct {
	Service *pushtokens.Service
}

func NewPushTokensHandler(service *pushtokens.Service) *PushTokensHandler {
	return &PushTokensHandler{Service: service}
}

func (h *PushTokensHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		respond.Unauthorized(w, "Authentication required")
		return
	}

	items, err := h.Service.List(r.Context(), actor)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, "Push tokens retrieved successfully", items)
}

func (h *PushTokensHandler) Register(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		respond.Unauthorized(w, "Authentication required")
		return
	}

	var input pushtokens.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respond.BadRequest(w, "Invalid request body")
		return
	}

	token, err := h.Service.Register(r.Context(), actor, input)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.Created(w, "Push token registered successfully", token)
}

func (h *PushTokensHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		respond.Unauthorized(w, "Authentication required")
		return
	}

	var input pushtokens.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respond.BadRequest(w, "Invalid request body")
		return
	}

	token, err := h.Service.Update(r.Context(), actor, r.PathValue("id"), input)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, "Push token updated successfully", token)
}

func (h *PushTokensHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		respond.Unauthorized(w, "Authentication required")
		return
	}

	if err := h.Service.Delete(r.Context(), actor, r.PathValue("id")); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, "Push token deleted successfully", nil)
}

func (h *PushTokensHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		respond.Unauthorized(w, "Authentication required")
		return
	}

	var input pushtokens.RefreshInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respond.BadRequest(w, "Invalid request body")
		return
	}

	token, err := h.Service.Refresh(r.Context(), actor, input)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, "Push token refreshed successfully", token)
}

func (h *PushTokensHandler) DeactivateAll(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		respond.Unauthorized(w, "Authentication required")
		return
	}

	n, err := h.Service.DeactivateAll(r.Context(), actor)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, "Push tokens deactivated successfully", map[string]int64{"deactivated": n})
}
