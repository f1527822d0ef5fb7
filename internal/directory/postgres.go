package directory

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aslbekmam/flower-salon/pkg/models"
)

type PostgresDirectory struct {
	db *sql.DB
}

func NewPostgresDirectory(db *sql.DB) *PostgresDirectory {
	return &PostgresDirectory{db: db}
}

func (d *PostgresDirectory) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	query := `
		SELECT customer_id, full_name, email, phone, birthday, registration_date, source
		FROM customers
		ORDER BY full_name
	`
	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	var customers []models.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("list customers: %w", err)
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (d *PostgresDirectory) ListEmployees(ctx context.Context) ([]models.Employee, error) {
	query := `
		SELECT employee_id, full_name, email, phone, position
		FROM employees
		ORDER BY full_name
	`
	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	var employees []models.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("list employees: %w", err)
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

func (d *PostgresDirectory) FindCustomer(ctx context.Context, id int64) (models.Customer, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT customer_id, full_name, email, phone, birthday, registration_date, source
		FROM customers
		WHERE customer_id = $1
	`, id)
	c, err := scanCustomer(row)
	if err == sql.ErrNoRows {
		return models.Customer{}, ErrNotFound
	}
	if err != nil {
		return models.Customer{}, fmt.Errorf("find customer %d: %w", id, err)
	}
	return c, nil
}

func (d *PostgresDirectory) FindEmployee(ctx context.Context, id int64) (models.Employee, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT employee_id, full_name, email, phone, position
		FROM employees
		WHERE employee_id = $1
	`, id)
	e, err := scanEmployee(row)
	if err == sql.ErrNoRows {
		return models.Employee{}, ErrNotFound
	}
	if err != nil {
		return models.Employee{}, fmt.Errorf("find employee %d: %w", id, err)
	}
	return e, nil
}

func scanCustomer(row interface{ Scan(...any) error }) (models.Customer, error) {
	var c models.Customer
	var phone, source sql.NullString
	var birthday, registered sql.NullTime
	if err := row.Scan(&c.ID, &c.FullName, &c.Email, &phone, &birthday, &registered, &source); err != nil {
		return models.Customer{}, err
	}
	c.Phone = phone.String
	c.Source = source.String
	if birthday.Valid {
		b := birthday.Time
		c.Birthday = &b
	}
	if registered.Valid {
		r := registered.Time
		c.RegisteredAt = &r
	}
	return c, nil
}

func scanEmployee(row interface{ Scan(...any) error }) (models.Employee, error) {
	var e models.Employee
	var phone, position sql.NullString
	if err := row.Scan(&e.ID, &e.FullName, &e.Email, &phone, &position); err != nil {
		return models.Employee{}, err
	}
	e.Phone = phone.String
	e.Position = position.String
	return e, nil
}

// Authenticate checks credentials against the customers and employees
// tables. Employees authenticate as staff, customers as themselves.
func (d *PostgresDirectory) Authenticate(ctx context.Context, login, password string) (models.Actor, error) {
	var id int64
	err := d.db.QueryRowContext(ctx,
		`SELECT employee_id FROM employees WHERE email = $1 AND password = $2`,
		login, password).Scan(&id)
	if err == nil {
		return models.Actor{Role: models.RoleStaff, EmployeeID: id}, nil
	}
	if err != sql.ErrNoRows {
		return models.Actor{}, fmt.Errorf("authenticate: %w", err)
	}

	err = d.db.QueryRowContext(ctx,
		`SELECT customer_id FROM customers WHERE email = $1 AND password = $2`,
		login, password).Scan(&id)
	if err == sql.ErrNoRows {
		return models.Actor{}, ErrBadCredentials
	}
	if err != nil {
		return models.Actor{}, fmt.Errorf("authenticate: %w", err)
	}
	return models.Actor{Role: models.RoleCustomer, CustomerID: id}, nil
}

var _ Authenticator = (*PostgresDirectory)(nil)
