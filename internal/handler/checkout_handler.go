package handler

import (
	"encoding/json"
	"net/http"

	"greenkart/internal/middleware"
	"greenkart/internal/model"
	"greenkart/internal/service"

	"github.com/rs/zerolog"
)

// CheckoutHandler handles checkout HTTP requests.
type CheckoutHandler struct {
	service service.CheckoutService
	logger  zerolog.Logger
}

// NewCheckoutHandler creates a new checkout handler.
func NewCheckoutHandler(service service.CheckoutService, logger zerolog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
		logger:  logger.With().Str("handler", "checkout").Logger(),
	}
}

// Checkout handles POST /api/checkout requests.
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing user identity", h.logger)
		return
	}

	var req model.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeServiceError(w, model.NewDomainError(model.ErrCodeInvalidJSON, "invalid request body"), h.logger)
		return
	}

	order, err := h.service.Checkout(r.Context(), user, &req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}
