package service

import (
	"context"

	"greenkart/internal/model"

	"github.com/google/uuid"
)

// CheckoutService converts a cart snapshot into an order and obtains a
// payment session from the gateway.
type CheckoutService interface {
	// Checkout creates an order from the user's cart. Stock is checked
	// but not reserved; the order survives gateway failure with status
	// FAILED for audit.
	Checkout(ctx context.Context, user model.User, req *model.CheckoutRequest) (*model.OrderResponse, error)
}

// ReconciliationOutcome describes what a reconcile call did.
type ReconciliationOutcome string

const (
	// OutcomeUnknownOrder means no order matched the session reference.
	OutcomeUnknownOrder ReconciliationOutcome = "UNKNOWN_ORDER"
	// OutcomeUnchanged means the order was already in (or concurrently
	// moved to) the reported state; duplicate deliveries land here.
	OutcomeUnchanged ReconciliationOutcome = "UNCHANGED"
	// OutcomeTransitioned means this call won the transition.
	OutcomeTransitioned ReconciliationOutcome = "TRANSITIONED"
)

// ReconciliationResult carries the outcome, the order's resulting status,
// and the order that was looked up (nil for OutcomeUnknownOrder).
type ReconciliationResult struct {
	Outcome ReconciliationOutcome
	Status  model.OrderStatus
	Order   *model.Order
}

// ReconciliationService applies gateway-reported status to orders. It is
// the single component allowed to move an order out of PENDING and to
// trigger the stock decrement.
type ReconciliationService interface {
	// Reconcile applies a gateway status tuple to the order identified by
	// the session reference. Safe under duplicate and concurrent
	// delivery.
	Reconcile(ctx context.Context, sessionRef, gatewayStatus, fraudFlag string) (*ReconciliationResult, error)

	// CheckStatus polls the gateway for the order's session and runs a
	// reconcile cycle, returning the (possibly updated) order.
	// Owner-only: a mismatched userID reads as not found.
	CheckStatus(ctx context.Context, orderID uuid.UUID, userID string) (*model.OrderResponse, error)
}

// OrderService covers the read and administrative surface of orders.
type OrderService interface {
	// ListByUser retrieves the caller's orders, newest first.
	ListByUser(ctx context.Context, userID string) ([]model.Order, error)

	// GetByID retrieves one order with items and shipping detail.
	// Owner-only: a mismatched userID reads as not found.
	GetByID(ctx context.Context, id uuid.UUID, userID string) (*model.OrderResponse, error)

	// ListAll retrieves every order (admin).
	ListAll(ctx context.Context) ([]model.Order, error)

	// OverrideStatus force-sets an order status (admin, audited).
	OverrideStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (*model.OrderResponse, error)

	// Delete removes a non-PAID order (admin).
	Delete(ctx context.Context, id uuid.UUID) error
}
