package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is read-only reference data from the order engine's point of
// view; the engine never writes the catalog.
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Unit        string          `json:"unit"`
	Description string          `json:"description,omitempty"`
}

type Customer struct {
	ID           int64      `json:"id"`
	FullName     string     `json:"full_name"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone,omitempty"`
	Birthday     *time.Time `json:"birthday,omitempty"`
	RegisteredAt *time.Time `json:"registered_at,omitempty"`
	Source       string     `json:"source,omitempty"`
}

type Employee struct {
	ID       int64  `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Position string `json:"position,omitempty"`
}

type Role string

const (
	RoleStaff    Role = "staff"
	RoleCustomer Role = "customer"
)

// Actor is the authenticated principal invoking an operation. It carries
// just enough to run capability checks: staff may see and modify any
// order, a customer only their own.
type Actor struct {
	Role       Role  `json:"role"`
	CustomerID int64 `json:"customer_id,omitempty"`
	EmployeeID int64 `json:"employee_id,omitempty"`
}

func (a Actor) IsStaff() bool { return a.Role == RoleStaff }

func (a Actor) CanAccessOrder(o Order) bool {
	return a.IsStaff() || o.CustomerID == a.CustomerID
}
