package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/tefa-events/server/internal/api/middleware"
	"github.com/tefa-events/server/internal/api/pagination"
	"github.com/tefa-events/server/internal/api/respond"
	"github.com/tefa-events/server/internal/domain/orders"
)

type OrdersHandler struct {
	Service *orders.Service
}

func NewOrdersHandler(service *orders.Service) *OrdersHandler {
	return &OrdersHandler{Service: service}
}

type orderListData struct {
	Orders []orders.Order  `json:"orders"`
	Meta   pagination.Meta `json:"meta"`
}

func (h *OrdersHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		respond.Unauthorized(w, "Authentication required")
		return
	}

	query := r.URL.Query()
	filters := orders.Filters{
		UserID:  query.Get("user_id"),
		EventID: query.Get("event_id"),
		Status:  orders.Status(query.Get("status")),
	}
	page := pagination.Parse(query)

	items, _, meta, err := h.Service.List(r.Context(), actor, filters, page)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, "Orders retrieved successfully", orderListData{Orders: items, Meta: meta})
}

func (h *OrdersHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		respond.Unauthorized(w, "Authentication required")
		return
	}

	order, err := h.Service.Get(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, "Order retrieved successfully", order)
}

func (h *OrdersHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		respond.Unauthorized(w, "Authentication required")
		return
	}

	var input orders.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respond.BadRequest(w, "Invalid request body")
		return
	}

	order, err := h.Service.CreateRegistration(r.Context(), actor, input)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.Created(w, "Registration created successfully", order)
}

func (h *OrdersHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		respond.Unauthorized(w, "Authentication required")
		return
	}

	var input orders.TransitionInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respond.BadRequest(w, "Invalid request body")
		return
	}

	order, err := h.Service.TransitionStatus(r.Context(), actor, r.PathValue("id"), input)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, "Order updated successfully", order)
}

func (h *OrdersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		respond.Unauthorized(w, "Authentication required")
		return
	}

	if err := h.Service.DeleteRegistration(r.Context(), actor, r.PathValue("id")); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, "Order deleted successfully", nil)
}

func (h *OrdersHandler) MyOrders(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		respond.Unauthorized(w, "Authentication required")
		return
	}

	page := pagination.Parse(r.URL.Query())
	items, meta, err := h.Service.MyOrders(r.Context(), actor, page)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, "Orders retrieved successfully", orderListData{Orders: items, Meta: meta})
}
