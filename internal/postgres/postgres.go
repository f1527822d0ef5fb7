// Package postgres owns the relational schema shared by the catalog,
// directory and orders adapters.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// EnsureSchema creates all tables and indexes if they do not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS product_categories (
			category_id SERIAL PRIMARY KEY,
			category_name VARCHAR(255) NOT NULL UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS products (
			product_id SERIAL PRIMARY KEY,
			product_name VARCHAR(255) NOT NULL,
			category_id INTEGER NOT NULL REFERENCES product_categories(category_id),
			price DECIMAL(10,2) NOT NULL,
			unit VARCHAR(32) NOT NULL DEFAULT 'pc',
			description TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS customers (
			customer_id SERIAL PRIMARY KEY,
			full_name VARCHAR(255) NOT NULL,
			email VARCHAR(255) NOT NULL UNIQUE,
			password VARCHAR(255),
			phone VARCHAR(64),
			birthday DATE,
			registration_date DATE,
			source VARCHAR(255)
		)`,
		`CREATE TABLE IF NOT EXISTS employees (
			employee_id SERIAL PRIMARY KEY,
			full_name VARCHAR(255) NOT NULL,
			email VARCHAR(255) NOT NULL UNIQUE,
			password VARCHAR(255),
			phone VARCHAR(64),
			position VARCHAR(255)
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			order_id SERIAL PRIMARY KEY,
			customer_id INTEGER NOT NULL REFERENCES customers(customer_id),
			employee_responsible_id INTEGER NOT NULL REFERENCES employees(employee_id),
			order_date TIMESTAMPTZ NOT NULL,
			delivery_date DATE NOT NULL,
			delivery_time_from CHAR(5) NOT NULL,
			delivery_time_to CHAR(5) NOT NULL,
			delivery_address TEXT NOT NULL,
			status VARCHAR(32) NOT NULL,
			total_amount DECIMAL(10,2) NOT NULL,
			payment_method VARCHAR(32) NOT NULL,
			idempotency_key VARCHAR(64) UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS order_lines (
			line_id SERIAL PRIMARY KEY,
			order_id INTEGER NOT NULL REFERENCES orders(order_id),
			product_id INTEGER NOT NULL REFERENCES products(product_id),
			quantity INTEGER NOT NULL,
			price_per_unit DECIMAL(10,2) NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_customer_id ON orders(customer_id)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status)`,
		`CREATE INDEX IF NOT EXISTS idx_order_lines_order_id ON order_lines(order_id)`,
	}

	for _, q := range queries {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// SeedDemo loads a small demo data set when the catalog is empty, so a
// fresh database is immediately usable.
func SeedDemo(ctx context.Context, db *sql.DB) error {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return fmt.Errorf("seed demo: %w", err)
	}
	if n > 0 {
		return nil
	}

	queries := []string{
		`INSERT INTO product_categories (category_name) VALUES
			('Bouquets'), ('Single flowers'), ('Potted plants')`,
		`INSERT INTO products (product_name, category_id, price, unit, description) VALUES
			('Red rose', 2, 100.00, 'pc', 'Classic long-stem rose'),
			('Tulip', 2, 50.00, 'pc', 'Seasonal tulip'),
			('Spring bouquet', 1, 1200.00, 'pc', 'Mixed seasonal bouquet'),
			('Orchid pot', 3, 1500.00, 'pc', 'Phalaenopsis in ceramic pot')`,
		`INSERT INTO customers (full_name, email, password, phone, birthday, registration_date, source) VALUES
			('Ivanov Ivan', 'ivan@example.com', 'client', '+7 (915) 000-11-22', '1985-05-15', '2023-01-12', 'ad'),
			('Sidorova Anna', 'anna@example.com', 'client2', '+7 (917) 000-78-90', '1980-11-30', '2024-02-15', 'referral')`,
		`INSERT INTO employees (full_name, email, password, phone, position) VALUES
			('Petrova Olga', 'olga@example.com', 'admin', '+7 (916) 000-33-44', 'florist')`,
	}
	for _, q := range queries {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("seed demo: %w", err)
		}
	}
	return nil
}
