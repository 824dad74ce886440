package handler

import (
	"encoding/json"
	"net/http"

	"greenkart/internal/middleware"
	"greenkart/internal/model"
	"greenkart/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// OrderHandler handles order read, status-check and admin HTTP requests.
type OrderHandler struct {
	orders         service.OrderService
	reconciliation service.ReconciliationService
	logger         zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(orders service.OrderService, reconciliation service.ReconciliationService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		orders:         orders,
		reconciliation: reconciliation,
		logger:         logger.With().Str("handler", "order").Logger(),
	}
}

// orderIDParam parses the {id} URL parameter.
func orderIDParam(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	return id, err == nil
}

// List handles GET /api/orders requests.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing user identity", h.logger)
		return
	}

	orders, err := h.orders.ListByUser(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

// GetByID handles GET /api/orders/{id} requests.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing user identity", h.logger)
		return
	}

	orderID, ok := orderIDParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid order ID format", h.logger)
		return
	}

	order, err := h.orders.GetByID(r.Context(), orderID, user.ID)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// CheckStatus handles GET /api/orders/{id}/check-status requests. It polls
// the gateway and reconciles before answering, so a missed webhook is
// recovered on the next poll.
func (h *OrderHandler) CheckStatus(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing user identity", h.logger)
		return
	}

	orderID, ok := orderIDParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid order ID format", h.logger)
		return
	}

	order, err := h.reconciliation.CheckStatus(r.Context(), orderID, user.ID)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// ListAll handles GET /api/admin/orders requests.
func (h *OrderHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListAll(r.Context())
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

// OverrideStatus handles PATCH /api/admin/orders/{id}/status requests.
func (h *OrderHandler) OverrideStatus(w http.ResponseWriter, r *http.Request) {
	orderID, ok := orderIDParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid order ID format", h.logger)
		return
	}

	var req model.StatusOverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeServiceError(w, model.NewDomainError(model.ErrCodeInvalidJSON, "invalid request body"), h.logger)
		return
	}

	order, err := h.orders.OverrideStatus(r.Context(), orderID, req.Status)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// Delete handles DELETE /api/admin/orders/{id} requests.
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	orderID, ok := orderIDParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid order ID format", h.logger)
		return
	}

	if err := h.orders.Delete(r.Context(), orderID); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
