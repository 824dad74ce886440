package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container and connection pool.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	// Create PostgreSQL container
	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	// Get connection string
	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		t.Fatalf("failed to parse connection string: %v", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	// Create schema
	createSchema(t, pool)

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// createSchema creates the database schema for testing. Mirrors
// migrations/001_init.sql.
func createSchema(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	schema := `
		CREATE TABLE IF NOT EXISTS products (
			id VARCHAR(50) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			price BIGINT NOT NULL CHECK (price >= 0),
			stock INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS orders (
			id UUID PRIMARY KEY,
			user_id VARCHAR(100) NOT NULL,
			order_number VARCHAR(100) NOT NULL UNIQUE,
			external_session_id VARCHAR(100) NOT NULL UNIQUE,
			status VARCHAR(20) NOT NULL DEFAULT 'PENDING',
			total_amount BIGINT NOT NULL CHECK (total_amount >= 0),
			stock_applied BOOLEAN NOT NULL DEFAULT FALSE,
			payment_url TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_orders_user_id ON orders(user_id);
		CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status);

		CREATE TABLE IF NOT EXISTS order_items (
			id UUID PRIMARY KEY,
			order_id UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			product_id VARCHAR(50) NOT NULL REFERENCES products(id),
			product_name VARCHAR(255) NOT NULL,
			unit_price BIGINT NOT NULL CHECK (unit_price >= 0),
			quantity INTEGER NOT NULL CHECK (quantity > 0),
			subtotal BIGINT NOT NULL CHECK (subtotal >= 0)
		);

		CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items(order_id);
		CREATE INDEX IF NOT EXISTS idx_order_items_product_id ON order_items(product_id);

		CREATE TABLE IF NOT EXISTS shipping_details (
			id UUID PRIMARY KEY,
			order_id UUID NOT NULL UNIQUE REFERENCES orders(id) ON DELETE CASCADE,
			recipient_name VARCHAR(255) NOT NULL,
			phone_number VARCHAR(20) NOT NULL,
			address TEXT NOT NULL,
			city VARCHAR(100) NOT NULL,
			province VARCHAR(100) NOT NULL,
			postal_code VARCHAR(10) NOT NULL,
			notes TEXT
		);
	`

	_, err := pool.Exec(ctx, schema)
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
}

// SeedProducts inserts test product data into the database.
func SeedProducts(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	products := []struct {
		id    string
		name  string
		price int64
		stock int
	}{
		{"P001", "Bamboo Toothbrush", 25000, 10},
		{"P002", "Reusable Bottle", 55000, 3},
		{"P003", "Organic Soap Bar", 18000, 50},
	}

	for _, p := range products {
		_, err := pool.Exec(ctx,
			"INSERT INTO products (id, name, price, stock) VALUES ($1, $2, $3, $4)",
			p.id, p.name, p.price, p.stock,
		)
		if err != nil {
			t.Fatalf("failed to seed product %s: %v", p.id, err)
		}
	}
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{"shipping_details", "order_items", "orders", "products"}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}
