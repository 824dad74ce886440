package handler

import (
	"bytes"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"greenkart/internal/gateway"
	"greenkart/internal/model"
	"greenkart/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const webhookServerKey = "SB-Mid-server-testkey"

func signNotification(n *model.PaymentNotification, serverKey string) {
	sum := sha512.Sum512([]byte(n.OrderID + n.StatusCode + n.GrossAmount + serverKey))
	n.SignatureKey = hex.EncodeToString(sum[:])
}

func settledNotification() *model.PaymentNotification {
	n := &model.PaymentNotification{
		OrderID:           "PAY-1700000000000-a1b2c3d4",
		StatusCode:        "200",
		GrossAmount:       "105000.00",
		TransactionStatus: "settlement",
	}
	signNotification(n, webhookServerKey)
	return n
}

func postNotification(t *testing.T, h *WebhookHandler, n *model.PaymentNotification) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(n)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/webhook/payment", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.HandleNotification(w, req)
	return w
}

func TestWebhookHandler_Settlement(t *testing.T) {
	mockRecon := new(MockReconciliationService)
	verifier := gateway.NewSignatureVerifier(webhookServerKey, true, zerolog.Nop())
	h := NewWebhookHandler(mockRecon, verifier, zerolog.Nop())

	order := sampleOrderResponse().Order
	order.Status = model.OrderStatusPaid
	mockRecon.On("Reconcile", mock.Anything, "PAY-1700000000000-a1b2c3d4", "settlement", "").
		Return(&service.ReconciliationResult{
			Outcome: service.OutcomeTransitioned,
			Status:  model.OrderStatusPaid,
			Order:   &order,
		}, nil)

	w := postNotification(t, h, settledNotification())

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ok"`)
	mockRecon.AssertExpectations(t)
}

func TestWebhookHandler_TamperedSignature(t *testing.T) {
	mockRecon := new(MockReconciliationService)
	verifier := gateway.NewSignatureVerifier(webhookServerKey, true, zerolog.Nop())
	h := NewWebhookHandler(mockRecon, verifier, zerolog.Nop())

	// Amount changed after signing: the digest no longer matches.
	n := settledNotification()
	n.GrossAmount = "1.00"

	w := postNotification(t, h, n)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockRecon.AssertNotCalled(t, "Reconcile", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestWebhookHandler_UnknownOrderIsAcknowledged(t *testing.T) {
	mockRecon := new(MockReconciliationService)
	verifier := gateway.NewSignatureVerifier(webhookServerKey, true, zerolog.Nop())
	h := NewWebhookHandler(mockRecon, verifier, zerolog.Nop())

	mockRecon.On("Reconcile", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&service.ReconciliationResult{Outcome: service.OutcomeUnknownOrder}, nil)

	w := postNotification(t, h, settledNotification())

	// 200 so the gateway stops retrying.
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ignored"`)
}

func TestWebhookHandler_DuplicateDelivery(t *testing.T) {
	mockRecon := new(MockReconciliationService)
	verifier := gateway.NewSignatureVerifier(webhookServerKey, true, zerolog.Nop())
	h := NewWebhookHandler(mockRecon, verifier, zerolog.Nop())

	order := sampleOrderResponse().Order
	order.Status = model.OrderStatusPaid
	mockRecon.On("Reconcile", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&service.ReconciliationResult{
			Outcome: service.OutcomeUnchanged,
			Status:  model.OrderStatusPaid,
			Order:   &order,
		}, nil)

	w := postNotification(t, h, settledNotification())

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ok"`)
}

func TestWebhookHandler_StorageFailure(t *testing.T) {
	mockRecon := new(MockReconciliationService)
	verifier := gateway.NewSignatureVerifier(webhookServerKey, true, zerolog.Nop())
	h := NewWebhookHandler(mockRecon, verifier, zerolog.Nop())

	mockRecon.On("Reconcile", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, assert.AnError)

	w := postNotification(t, h, settledNotification())

	// 500 tells the gateway to retry later.
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestWebhookHandler_InvalidBody(t *testing.T) {
	mockRecon := new(MockReconciliationService)
	verifier := gateway.NewSignatureVerifier(webhookServerKey, true, zerolog.Nop())
	h := NewWebhookHandler(mockRecon, verifier, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/webhook/payment", bytes.NewReader([]byte("{nope")))
	w := httptest.NewRecorder()
	h.HandleNotification(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockRecon.AssertNotCalled(t, "Reconcile", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestWebhookHandler_GrossAmountMismatchStillProcessed(t *testing.T) {
	mockRecon := new(MockReconciliationService)
	verifier := gateway.NewSignatureVerifier(webhookServerKey, true, zerolog.Nop())
	h := NewWebhookHandler(mockRecon, verifier, zerolog.Nop())

	// Signed correctly but the session was created with the wrong amount;
	// the mismatch is logged, not rejected.
	n := settledNotification()
	n.GrossAmount = "999999.00"
	signNotification(n, webhookServerKey)

	order := sampleOrderResponse().Order
	order.Status = model.OrderStatusPaid
	mockRecon.On("Reconcile", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&service.ReconciliationResult{
			Outcome: service.OutcomeTransitioned,
			Status:  model.OrderStatusPaid,
			Order:   &order,
		}, nil)

	w := postNotification(t, h, n)

	assert.Equal(t, http.StatusOK, w.Code)
	mockRecon.AssertExpectations(t)
}
