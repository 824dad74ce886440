package repository

import (
	"context"

	"greenkart/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// OrderRepository is the durable record of orders, items and shipping
// details. It owns the only mutation path for order status and exposes the
// conditional-transition primitive the reconciliation engine is built on.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts the order's line-item snapshots within the
	// provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// CreateShippingDetail inserts the order's shipping detail within the
	// provided transaction.
	CreateShippingDetail(ctx context.Context, tx pgx.Tx, detail *model.ShippingDetail) error

	// GetByID retrieves an order with its items and shipping detail.
	// Returns (nil, nil, nil, nil) when the order does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderItem, *model.ShippingDetail, error)

	// GetBySessionID retrieves an order and its items by the gateway
	// session identifier. Returns (nil, nil, nil) when no order matches.
	GetBySessionID(ctx context.Context, sessionID string) (*model.Order, []model.OrderItem, error)

	// GetStatus reads the order's current status within the provided
	// transaction. Used to decide Unchanged-vs-conflict after a
	// conditional transition found zero matching rows.
	GetStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID) (model.OrderStatus, error)

	// ListByUser retrieves a user's orders, newest first.
	ListByUser(ctx context.Context, userID string) ([]model.Order, error)

	// ListAll retrieves every order, newest first.
	ListAll(ctx context.Context) ([]model.Order, error)

	// SetPaymentURL records the gateway redirect URL on the order.
	SetPaymentURL(ctx context.Context, id uuid.UUID, paymentURL string) error

	// UpdateStatus unconditionally sets the order status. Reserved for
	// the checkout failure path and the audited admin override; the
	// reconciliation path must use TransitionStatus.
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) error

	// TransitionStatus conditionally moves the order to the target status
	// if and only if its current status is in the from set. When
	// markStockApplied is set, stock_applied is flipped in the same
	// write. Returns whether a row was updated; a false result means a
	// concurrent caller won the transition.
	TransitionStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, from []model.OrderStatus, to model.OrderStatus, markStockApplied bool) (bool, error)

	// Delete removes an order with its items and shipping detail.
	// Callers must enforce the non-PAID precondition.
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProductRepository provides the price/stock reads checkout needs and the
// stock decrement the reconciliation engine triggers.
type ProductRepository interface {
	// GetByIDs retrieves products by their IDs.
	GetByIDs(ctx context.Context, ids []string) ([]model.Product, error)

	// DecrementStock reduces a product's stock within the provided
	// transaction and returns the post-decrement value so callers can
	// detect an oversell race (negative remaining stock).
	DecrementStock(ctx context.Context, tx pgx.Tx, productID string, quantity int) (int, error)
}
