package model

import "time"

// Product is the price/stock record this subsystem consumes. Price is in
// whole rupiah. Catalogue management lives elsewhere; only stock is ever
// mutated here, and only by the reconciliation path.
type Product struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Price     int64     `json:"price" db:"price"`
	Stock     int       `json:"stock" db:"stock"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
