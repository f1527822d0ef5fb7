package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aslbekmam/flower-salon/pkg/models"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) ListProducts(ctx context.Context) ([]models.Product, error) {
	query := `
		SELECT p.product_id, p.product_name, c.category_name, p.price, p.unit, p.description
		FROM products p
		JOIN product_categories c ON p.category_id = c.category_id
		ORDER BY p.product_name
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("list products: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (s *PostgresStore) GetProduct(ctx context.Context, id int64) (models.Product, error) {
	query := `
		SELECT p.product_id, p.product_name, c.category_name, p.price, p.unit, p.description
		FROM products p
		JOIN product_categories c ON p.category_id = c.category_id
		WHERE p.product_id = $1
	`
	row := s.db.QueryRowContext(ctx, query, id)
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return models.Product{}, ErrNotFound
	}
	if err != nil {
		return models.Product{}, fmt.Errorf("get product %d: %w", id, err)
	}
	return p, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (models.Product, error) {
	var p models.Product
	var description sql.NullString
	err := row.Scan(&p.ID, &p.Name, &p.Category, &p.UnitPrice, &p.Unit, &description)
	if err != nil {
		return models.Product{}, err
	}
	p.Description = description.String
	return p, nil
}
