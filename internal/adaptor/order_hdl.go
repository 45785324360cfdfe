package adaptor

import (
	"encoding/json"
	"net/http"

	"cinema-reservation/internal/dto/request"
	"cinema-reservation/internal/usecase"
	"cinema-reservation/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type OrderHandler struct {
	service usecase.ReservationService
	log     *zap.Logger
}

func NewOrderHandler(service usecase.ReservationService, log *zap.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		log:     log.With(zap.String("handler", "order")),
	}
}

func (h *OrderHandler) decode(w http.ResponseWriter, r *http.Request) (*request.ReservationRequest, bool) {
	var req request.ReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return nil, false
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return nil, false
	}
	return &req, true
}

// CreateOrder handles POST /api/orders
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	order, err := h.service.CreateOrder(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.log, err, "create order")
		return
	}

	utils.ResponseCreated(w, "success", order)
}

// UpdateOrder handles PUT /api/orders/{id}
func (h *OrderHandler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	order, err := h.service.UpdateOrder(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, h.log, err, "update order")
		return
	}

	utils.ResponseSuccess(w, "success", order)
}

// GetOrders handles GET /api/orders
func (h *OrderHandler) GetOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.GetOrders(r.Context())
	if err != nil {
		writeServiceError(w, h.log, err, "get orders")
		return
	}

	utils.ResponseSuccess(w, "success", orders)
}

// GetOrderByID handles GET /api/orders/{id}
func (h *OrderHandler) GetOrderByID(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.GetOrderByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.log, err, "get order")
		return
	}

	utils.ResponseSuccess(w, "success", order)
}

// DeleteOrder handles DELETE /api/orders/{id}
func (h *OrderHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteOrder(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, h.log, err, "delete order")
		return
	}

	utils.ResponseSuccess(w, "success", nil)
}

// RemoveTicket handles DELETE /api/orders/{id}/tickets/{ticketId}
func (h *OrderHandler) RemoveTicket(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.RemoveTicket(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "ticketId"))
	if err != nil {
		writeServiceError(w, h.log, err, "remove ticket")
		return
	}

	utils.ResponseSuccess(w, "success", order)
}

// GetOrphanTickets handles GET /api/tickets/orphans
func (h *OrderHandler) GetOrphanTickets(w http.ResponseWriter, r *http.Request) {
	tickets, err := h.service.GetOrphanTickets(r.Context())
	if err != nil {
		writeServiceError(w, h.log, err, "get orphan tickets")
		return
	}

	utils.ResponseSuccess(w, "success", tickets)
}

// AdoptOrphan handles POST /api/tickets/orphans/{id}/adopt
func (h *OrderHandler) AdoptOrphan(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.AdoptOrphan(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.log, err, "adopt orphan ticket")
		return
	}

	utils.ResponseCreated(w, "success", order)
}
