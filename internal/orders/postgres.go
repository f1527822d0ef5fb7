package orders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/aslbekmam/flower-salon/pkg/models"
)

type PostgresRepository struct {
	db *sql.DB

	// beforeStatusWrite runs between the status read and the guarded
	// update in UpdateStatus. Test hook, mirrors failAfterLines in the
	// memory repository.
	beforeStatusWrite func()
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var _ Repository = (*PostgresRepository)(nil)

func (r *PostgresRepository) Create(ctx context.Context, c CreateOrder) (int64, error) {
	if err := c.validate(); err != nil {
		return 0, err
	}
	if c.IdempotencyKey != "" {
		if id, ok, err := r.findByIdempotencyKey(ctx, c.IdempotencyKey); err != nil {
			return 0, err
		} else if ok {
			return id, nil
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin create order: %w", err)
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (customer_id, employee_responsible_id, order_date,
		                    delivery_date, delivery_time_from, delivery_time_to,
		                    delivery_address, status, total_amount, payment_method,
		                    idempotency_key)
		VALUES ($1, $2, NOW(), $3, $4, $5, $6, $7, $8, $9, NULLIF($10, ''))
		RETURNING order_id
	`, c.CustomerID, c.EmployeeID, c.DeliveryDate, c.DeliveryFrom, c.DeliveryTo,
		c.DeliveryAddress, models.StatusProcessing, c.total(), c.PaymentMethod,
		c.IdempotencyKey).Scan(&id)
	if err != nil {
		// A concurrent create with the same idempotency key committed
		// first; return the order it produced.
		if c.IdempotencyKey != "" && isUniqueViolation(err) {
			if id, ok, selErr := r.findByIdempotencyKey(ctx, c.IdempotencyKey); selErr == nil && ok {
				return id, nil
			}
		}
		return 0, fmt.Errorf("insert order: %w", err)
	}

	for i, l := range c.Lines {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_lines (order_id, product_id, quantity, price_per_unit)
			VALUES ($1, $2, $3, $4)
		`, id, l.ProductID, l.Quantity, l.PricePerUnit)
		if err != nil {
			return 0, fmt.Errorf("insert order line %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit create order: %w", err)
	}
	return id, nil
}

func (r *PostgresRepository) findByIdempotencyKey(ctx context.Context, key string) (int64, bool, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		`SELECT order_id FROM orders WHERE idempotency_key = $1`, key).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("lookup idempotency key: %w", err)
	}
	return id, true, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (models.Order, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT order_id, customer_id, employee_responsible_id, order_date,
		       delivery_date, delivery_time_from, delivery_time_to,
		       delivery_address, status, total_amount, payment_method
		FROM orders
		WHERE order_id = $1
	`, id)
	o, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return models.Order{}, ErrNotFound
	}
	if err != nil {
		return models.Order{}, fmt.Errorf("get order %d: %w", id, err)
	}
	return o, nil
}

func (r *PostgresRepository) Lines(ctx context.Context, orderID int64) ([]models.OrderLine, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT ol.order_id, ol.product_id, p.product_name, ol.quantity, ol.price_per_unit
		FROM order_lines ol
		JOIN products p ON ol.product_id = p.product_id
		WHERE ol.order_id = $1
		ORDER BY ol.line_id
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order lines: %w", err)
	}
	defer rows.Close()

	var lines []models.OrderLine
	for rows.Next() {
		var l models.OrderLine
		if err := rows.Scan(&l.OrderID, &l.ProductID, &l.ProductName, &l.Quantity, &l.PricePerUnit); err != nil {
			return nil, fmt.Errorf("list order lines: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// UpdateStatus validates the transition against the current status and
// writes with a compare-and-set guard, so a decision racing a committed
// concurrent transition surfaces as ErrConflict instead of silently
// overwriting it.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, orderID int64, next models.Status) (models.Status, error) {
	var current models.Status
	err := r.db.QueryRowContext(ctx,
		`SELECT status FROM orders WHERE order_id = $1`, orderID).Scan(&current)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("read order %d status: %w", orderID, err)
	}
	if !current.CanTransitionTo(next) {
		return "", fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, next)
	}
	if r.beforeStatusWrite != nil {
		r.beforeStatusWrite()
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status = $1 WHERE order_id = $2 AND status = $3`,
		next, orderID, current)
	if err != nil {
		return "", fmt.Errorf("update order %d status: %w", orderID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("update order %d status: %w", orderID, err)
	}
	if n == 0 {
		return "", ErrConflict
	}
	return current, nil
}

func (r *PostgresRepository) List(ctx context.Context, f Filter) ([]models.Order, error) {
	query := `
		SELECT order_id, customer_id, employee_responsible_id, order_date,
		       delivery_date, delivery_time_from, delivery_time_to,
		       delivery_address, status, total_amount, payment_method
		FROM orders
	`
	var conds []string
	var args []any
	if f.Status != nil {
		args = append(args, *f.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.Date != nil {
		// Truncate in UTC explicitly; a plain ::date on a timestamptz
		// would use the session time zone and disagree with the memory
		// repository near day boundaries.
		args = append(args, f.Date.UTC().Format("2006-01-02"))
		conds = append(conds, fmt.Sprintf("(order_date AT TIME ZONE 'UTC')::date = $%d::date", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY order_date DESC, order_id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var out []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("list orders: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func scanOrder(row interface{ Scan(...any) error }) (models.Order, error) {
	var o models.Order
	err := row.Scan(&o.ID, &o.CustomerID, &o.EmployeeID, &o.CreatedAt,
		&o.DeliveryDate, &o.DeliveryFrom, &o.DeliveryTo,
		&o.DeliveryAddress, &o.Status, &o.TotalAmount, &o.PaymentMethod)
	if err != nil {
		return models.Order{}, err
	}
	return o, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
