package repository

import (
	"context"
	"fmt"

	"greenkart/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// CreateOrder inserts a new order within the provided transaction.
func (r *orderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders (id, user_id, order_number, external_session_id, status, total_amount, stock_applied, payment_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := tx.Exec(ctx, query,
		order.ID,
		order.UserID,
		order.OrderNumber,
		order.ExternalSessionID,
		order.Status,
		order.TotalAmount,
		order.StockApplied,
		order.PaymentURL,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Str("order_number", order.OrderNumber).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Str("order_number", order.OrderNumber).
		Msg("order created")

	return nil
}

// CreateOrderItems inserts the order's line-item snapshots within the provided transaction.
func (r *orderRepository) CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_items (id, order_id, product_id, product_name, unit_price, quantity, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(query, item.ID, item.OrderID, item.ProductID, item.ProductName, item.UnitPrice, item.Quantity, item.Subtotal)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(items); i++ {
		_, err := results.Exec()
		if err != nil {
			r.logger.Error().
				Err(err).
				Str("order_id", items[i].OrderID.String()).
				Str("product_id", items[i].ProductID).
				Msg("failed to create order item")
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	r.logger.Debug().
		Int("count", len(items)).
		Msg("order items created")

	return nil
}

// CreateShippingDetail inserts the order's shipping detail within the provided transaction.
func (r *orderRepository) CreateShippingDetail(ctx context.Context, tx pgx.Tx, detail *model.ShippingDetail) error {
	query := `
		INSERT INTO shipping_details (id, order_id, recipient_name, phone_number, address, city, province, postal_code, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := tx.Exec(ctx, query,
		detail.ID,
		detail.OrderID,
		detail.RecipientName,
		detail.PhoneNumber,
		detail.Address,
		detail.City,
		detail.Province,
		detail.PostalCode,
		detail.Notes,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", detail.OrderID.String()).
			Msg("failed to create shipping detail")
		return fmt.Errorf("failed to create shipping detail: %w", err)
	}

	return nil
}

const orderColumns = `id, user_id, order_number, external_session_id, status, total_amount, stock_applied, payment_url, created_at, updated_at`

func scanOrder(row pgx.Row, order *model.Order) error {
	return row.Scan(
		&order.ID,
		&order.UserID,
		&order.OrderNumber,
		&order.ExternalSessionID,
		&order.Status,
		&order.TotalAmount,
		&order.StockApplied,
		&order.PaymentURL,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
}

// GetByID retrieves an order with its items and shipping detail.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderItem, *model.ShippingDetail, error) {
	orderQuery := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	var order model.Order
	err := scanOrder(r.pool.QueryRow(ctx, orderQuery, id), &order)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil, nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, nil, nil, fmt.Errorf("failed to query order: %w", err)
	}

	items, err := r.itemsForOrder(ctx, order.ID)
	if err != nil {
		return nil, nil, nil, err
	}

	detail, err := r.shippingForOrder(ctx, order.ID)
	if err != nil {
		return nil, nil, nil, err
	}

	return &order, items, detail, nil
}

// GetBySessionID retrieves an order and its items by the gateway session identifier.
func (r *orderRepository) GetBySessionID(ctx context.Context, sessionID string) (*model.Order, []model.OrderItem, error) {
	orderQuery := `SELECT ` + orderColumns + ` FROM orders WHERE external_session_id = $1`

	var order model.Order
	err := scanOrder(r.pool.QueryRow(ctx, orderQuery, sessionID), &order)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("session_id", sessionID).Msg("no order for session")
			return nil, nil, nil
		}
		r.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to query order by session")
		return nil, nil, fmt.Errorf("failed to query order by session: %w", err)
	}

	items, err := r.itemsForOrder(ctx, order.ID)
	if err != nil {
		return nil, nil, err
	}

	return &order, items, nil
}

// GetStatus reads the order's current status within the provided transaction.
func (r *orderRepository) GetStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID) (model.OrderStatus, error) {
	var status model.OrderStatus
	err := tx.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1`, id).Scan(&status)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to read order status")
		return "", fmt.Errorf("failed to read order status: %w", err)
	}
	return status, nil
}

// ListByUser retrieves a user's orders, newest first.
func (r *orderRepository) ListByUser(ctx context.Context, userID string) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`
	return r.listOrders(ctx, query, userID)
}

// ListAll retrieves every order, newest first.
func (r *orderRepository) ListAll(ctx context.Context) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`
	return r.listOrders(ctx, query)
}

func (r *orderRepository) listOrders(ctx context.Context, query string, args ...any) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query orders")
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		var order model.Order
		if err := scanOrder(rows, &order); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}

// SetPaymentURL records the gateway redirect URL on the order.
func (r *orderRepository) SetPaymentURL(ctx context.Context, id uuid.UUID, paymentURL string) error {
	query := `UPDATE orders SET payment_url = $2, updated_at = NOW() WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, paymentURL)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to set payment URL")
		return fmt.Errorf("failed to set payment URL: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("order %s not found", id)
	}

	return nil
}

// UpdateStatus unconditionally sets the order status.
func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) error {
	query := `UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, status)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", id.String()).
			Str("status", string(status)).
			Msg("failed to update order status")
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("order %s not found", id)
	}

	r.logger.Info().
		Str("order_id", id.String()).
		Str("status", string(status)).
		Msg("order status updated")

	return nil
}

// TransitionStatus conditionally moves the order to the target status. The
// WHERE clause on the current status is the optimistic-concurrency guard:
// two concurrent reconcilers may both attempt the same transition but at
// most one matches a row, and the loser observes rows-affected == 0.
func (r *orderRepository) TransitionStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, from []model.OrderStatus, to model.OrderStatus, markStockApplied bool) (bool, error) {
	fromValues := make([]string, len(from))
	for i, s := range from {
		fromValues[i] = string(s)
	}

	var query string
	if markStockApplied {
		query = `
			UPDATE orders
			SET status = $3, stock_applied = TRUE, updated_at = NOW()
			WHERE id = $1 AND status = ANY($2) AND stock_applied = FALSE
		`
	} else {
		query = `
			UPDATE orders
			SET status = $3, updated_at = NOW()
			WHERE id = $1 AND status = ANY($2)
		`
	}

	tag, err := tx.Exec(ctx, query, id, fromValues, to)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", id.String()).
			Str("to_status", string(to)).
			Msg("failed to transition order status")
		return false, fmt.Errorf("failed to transition order status: %w", err)
	}

	applied := tag.RowsAffected() == 1

	r.logger.Debug().
		Str("order_id", id.String()).
		Str("to_status", string(to)).
		Bool("applied", applied).
		Msg("conditional status transition")

	return applied, nil
}

// Delete removes an order with its items and shipping detail (cascade).
func (r *orderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to delete order")
		return fmt.Errorf("failed to delete order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("order %s not found", id)
	}

	r.logger.Info().Str("order_id", id.String()).Msg("order deleted")
	return nil
}

func (r *orderRepository) itemsForOrder(ctx context.Context, orderID uuid.UUID) ([]model.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, product_name, unit_price, quantity, subtotal
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to query order items")
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var items []model.OrderItem
	for rows.Next() {
		var item model.OrderItem
		err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName, &item.UnitPrice, &item.Quantity, &item.Subtotal)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order item row")
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order item rows")
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return items, nil
}

func (r *orderRepository) shippingForOrder(ctx context.Context, orderID uuid.UUID) (*model.ShippingDetail, error) {
	query := `
		SELECT id, order_id, recipient_name, phone_number, address, city, province, postal_code, notes
		FROM shipping_details
		WHERE order_id = $1
	`

	var detail model.ShippingDetail
	err := r.pool.QueryRow(ctx, query, orderID).Scan(
		&detail.ID,
		&detail.OrderID,
		&detail.RecipientName,
		&detail.PhoneNumber,
		&detail.Address,
		&detail.City,
		&detail.Province,
		&detail.PostalCode,
		&detail.Notes,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to query shipping detail")
		return nil, fmt.Errorf("failed to query shipping detail: %w", err)
	}

	return &detail, nil
}
