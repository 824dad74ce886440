package repository

import (
	"context"
	"fmt"

	"greenkart/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

// GetByIDs retrieves products by their IDs.
func (r *productRepository) GetByIDs(ctx context.Context, ids []string) ([]model.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, name, price, stock, created_at
		FROM products
		WHERE id = ANY($1)
	`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("id_count", len(ids)).Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		var product model.Product
		err := rows.Scan(&product.ID, &product.Name, &product.Price, &product.Stock, &product.CreatedAt)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// DecrementStock reduces a product's stock within the provided transaction.
// The single UPDATE is safe under concurrent decrements from unrelated
// orders; the returned post-decrement value lets the caller detect stock
// going negative (an accepted oversell race, logged upstream).
func (r *productRepository) DecrementStock(ctx context.Context, tx pgx.Tx, productID string, quantity int) (int, error) {
	query := `
		UPDATE products
		SET stock = stock - $2
		WHERE id = $1
		RETURNING stock
	`

	var remaining int
	err := tx.QueryRow(ctx, query, productID, quantity).Scan(&remaining)
	if err != nil {
		if err == pgx.ErrNoRows {
			return 0, fmt.Errorf("product %s not found", productID)
		}
		r.logger.Error().
			Err(err).
			Str("product_id", productID).
			Int("quantity", quantity).
			Msg("failed to decrement stock")
		return 0, fmt.Errorf("failed to decrement stock: %w", err)
	}

	r.logger.Debug().
		Str("product_id", productID).
		Int("quantity", quantity).
		Int("remaining", remaining).
		Msg("stock decremented")

	return remaining, nil
}
