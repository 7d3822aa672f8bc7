package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// The unique indexes below are load-bearing: customer dedup and order-number
// retry both treat a 23505 from these as a signal, not a failure.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS merchants (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS customers (
		id             TEXT PRIMARY KEY,
		merchant_id    TEXT NOT NULL REFERENCES merchants(id),
		email          TEXT NOT NULL,
		full_name      TEXT NOT NULL DEFAULT '',
		phone          TEXT NOT NULL DEFAULT '',
		lifetime_value NUMERIC(12,2) NOT NULL DEFAULT 0,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS customers_merchant_id_email_key
		ON customers (merchant_id, email)`,
	`CREATE TABLE IF NOT EXISTS products (
		id          TEXT PRIMARY KEY,
		merchant_id TEXT NOT NULL REFERENCES merchants(id),
		name        TEXT NOT NULL,
		sku         TEXT,
		price       NUMERIC(12,2) NOT NULL DEFAULT 0,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id               TEXT PRIMARY KEY,
		merchant_id      TEXT NOT NULL REFERENCES merchants(id),
		order_number     TEXT NOT NULL,
		external_id      TEXT,
		customer_id      TEXT REFERENCES customers(id),
		total_amount     NUMERIC(12,2) NOT NULL CHECK (total_amount >= 0),
		status           TEXT NOT NULL DEFAULT 'pending',
		shipping_address TEXT NOT NULL DEFAULT '',
		shipping_method  TEXT NOT NULL DEFAULT '',
		payment_method   TEXT NOT NULL DEFAULT '',
		created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS orders_order_number_key
		ON orders (order_number)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS orders_external_id_key
		ON orders (external_id) WHERE external_id IS NOT NULL`,
	`CREATE INDEX IF NOT EXISTS orders_merchant_created_idx
		ON orders (merchant_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id         TEXT PRIMARY KEY,
		order_id   TEXT NOT NULL REFERENCES orders(id),
		product_id TEXT NOT NULL REFERENCES products(id),
		quantity   INTEGER NOT NULL CHECK (quantity > 0),
		price      NUMERIC(12,2) NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS order_items_order_idx ON order_items (order_id)`,
}

// EnsureSchema creates the tables and indexes the engine depends on.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
