package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the order lifecycle state. Orders start in StatusProcessing
// and end in one of the terminal states; there is no way back.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusProcessing, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no transition out of s is allowed.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransitionTo reports whether the edge s -> next is legal. The only
// legal edges are processing -> completed and processing -> cancelled;
// self-loops are rejected like any other edge.
func (s Status) CanTransitionTo(next Status) bool {
	if s != StatusProcessing {
		return false
	}
	return next == StatusCompleted || next == StatusCancelled
}

type PaymentMethod string

const (
	PaymentCard   PaymentMethod = "card"
	PaymentCash   PaymentMethod = "cash"
	PaymentOnline PaymentMethod = "online"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCard, PaymentCash, PaymentOnline:
		return true
	}
	return false
}

// Order is the order header. CreatedAt is assigned by the server at
// creation time and never changes. TotalAmount is computed from the
// lines when the order is created and is never recomputed from the
// catalog afterwards.
type Order struct {
	ID              int64           `json:"id"`
	CustomerID      int64           `json:"customer_id"`
	EmployeeID      int64           `json:"employee_id"`
	CreatedAt       time.Time       `json:"created_at"`
	DeliveryDate    time.Time       `json:"delivery_date"`
	DeliveryFrom    string          `json:"delivery_from"`
	DeliveryTo      string          `json:"delivery_to"`
	DeliveryAddress string          `json:"delivery_address"`
	Status          Status          `json:"status"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	PaymentMethod   PaymentMethod   `json:"payment_method"`
}

// OrderLine is one product position of an order. PricePerUnit is the
// unit price captured when the order was placed, independent of later
// catalog price changes. ProductName is joined in at read time for
// display and is not stored on the line.
type OrderLine struct {
	OrderID      int64           `json:"order_id"`
	ProductID    int64           `json:"product_id"`
	ProductName  string          `json:"product_name,omitempty"`
	Quantity     int64           `json:"quantity"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
}

func (l OrderLine) Subtotal() decimal.Decimal {
	return l.PricePerUnit.Mul(decimal.NewFromInt(l.Quantity))
}

// OrderSummary is a listing row with party display names denormalized in.
type OrderSummary struct {
	Order
	CustomerName string `json:"customer_name"`
	EmployeeName string `json:"employee_name"`
}
