package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/tefa-events/server/internal/api/middleware"
	"github.com/tefa-events/server/internal/api/pagination"
	"github.com/tefa-events/server/internal/api/respond"
	"github.com/tefa-events/server/internal/domain/events"
)

type EventsHandler struct {
	Service *events.Service
}

func NewEventsHandler(service *events.Service) *EventsHandler {
	return &EventsHandler{Service: service}
}

type eventListData struct {
	Events []events.Event  `json:"events"`
	Meta   pagination.Meta `json:"meta"`
}

func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filters := events.Filters{
		Search: query.Get("search"),
		Status: events.Status(query.Get("status")),
	}
	page := pagination.Parse(query)

	items, total, err := h.Service.List(r.Context(), filters, page)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.OK(w, "Events retrieved successfully", eventListData{
		Events: items,
		Meta:   pagination.NewMeta(page, total, len(items)),
	})
}

func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	event, err := h.Service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, "Event retrieved successfully", event)
}

func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		respond.Unauthorized(w, "Authentication required")
		return
	}

	var input events.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respond.BadRequest(w, "Invalid request body")
		return
	}

	event, err := h.Service.Create(r.Context(), actor, input)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.Created(w, "Event created successfully", event)
}

func (h *EventsHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		respond.Unauthorized(w, "Authentication required")
		return
	}

	var input events.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respond.BadRequest(w, "Invalid request body")
		return
	}

	event, err := h.Service.Update(r.Context(), actor, r.PathValue("id"), input)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, "Event updated successfully", event)
}

func (h *EventsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		respond.Unauthorized(w, "Authentication required")
		return
	}

	if err := h.Service.Delete(r.Context(), actor, r.PathValue("id")); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, "Event deleted successfully", nil)
}
