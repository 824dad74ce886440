package handler

import (
	"encoding/json"
	"net/http"

	"greenkart/internal/gateway"
	"greenkart/internal/model"
	"greenkart/internal/service"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// WebhookHandler handles payment gateway notifications.
//
// The gateway retries on any non-2xx answer, so the handler returns 200 for
// every outcome it cannot improve by a retry: duplicates, unknown orders,
// conflicting signals. Only a bad signature (400) and a storage failure
// (500, retryable) break that rule.
type WebhookHandler struct {
	reconciliation service.ReconciliationService
	verifier       *gateway.SignatureVerifier
	logger         zerolog.Logger
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(reconciliation service.ReconciliationService, verifier *gateway.SignatureVerifier, logger zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{
		reconciliation: reconciliation,
		verifier:       verifier,
		logger:         logger.With().Str("handler", "webhook").Logger(),
	}
}

// webhookAck is the body returned for accepted notifications.
type webhookAck struct {
	Status string `json:"status"`
}

// HandleNotification handles POST /webhook/payment requests.
func (h *WebhookHandler) HandleNotification(w http.ResponseWriter, r *http.Request) {
	var notification model.PaymentNotification
	if err := json.NewDecoder(r.Body).Decode(&notification); err != nil {
		writeError(w, http.StatusBadRequest, "invalid notification body", h.logger)
		return
	}

	// Authenticity first: nothing is looked up before the signature holds,
	// so a forged body cannot probe which session references exist.
	if !h.verifier.Verify(notification.OrderID, notification.StatusCode, notification.GrossAmount, notification.SignatureKey) {
		h.logger.Warn().
			Str("session_ref", notification.OrderID).
			Str("status_code", notification.StatusCode).
			Msg("webhook signature mismatch")
		writeError(w, http.StatusBadRequest, "invalid signature", h.logger)
		return
	}

	result, err := h.reconciliation.Reconcile(r.Context(), notification.OrderID, notification.TransactionStatus, notification.FraudStatus)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to process notification", h.logger)
		return
	}

	if result.Outcome == service.OutcomeUnknownOrder {
		// Acknowledged so the gateway stops retrying a reference we will
		// never know about.
		writeJSON(w, http.StatusOK, webhookAck{Status: "ignored"})
		return
	}

	h.checkGrossAmount(&notification, result.Order)

	h.logger.Info().
		Str("session_ref", notification.OrderID).
		Str("transaction_status", notification.TransactionStatus).
		Str("outcome", string(result.Outcome)).
		Str("order_status", string(result.Status)).
		Msg("notification processed")

	writeJSON(w, http.StatusOK, webhookAck{Status: "ok"})
}

// checkGrossAmount cross-checks the notification amount against the stored
// order total. The signature already covers the amount, so a mismatch points
// at a session created with the wrong total; it is flagged, not rejected.
func (h *WebhookHandler) checkGrossAmount(notification *model.PaymentNotification, order *model.Order) {
	reported, err := decimal.NewFromString(notification.GrossAmount)
	if err != nil {
		h.logger.Warn().
			Str("session_ref", notification.OrderID).
			Str("gross_amount", notification.GrossAmount).
			Msg("unparseable gross amount in notification")
		return
	}

	if !reported.Equal(decimal.NewFromInt(order.TotalAmount)) {
		h.logger.Warn().
			Str("order_id", order.ID.String()).
			Str("reported_amount", reported.String()).
			Int64("order_amount", order.TotalAmount).
			Msg("gross amount mismatch between notification and order")
	}
}
