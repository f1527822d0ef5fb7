package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		name string
		from Status
		to   Status
		want bool
	}{
		{"processing to completed", StatusProcessing, StatusCompleted, true},
		{"processing to cancelled", StatusProcessing, StatusCancelled, true},
		{"processing self loop", StatusProcessing, StatusProcessing, false},
		{"completed to cancelled", StatusCompleted, StatusCancelled, false},
		{"completed self loop", StatusCompleted, StatusCompleted, false},
		{"completed to processing", StatusCompleted, StatusProcessing, false},
		{"cancelled to completed", StatusCancelled, StatusCompleted, false},
		{"cancelled self loop", StatusCancelled, StatusCancelled, false},
		{"cancelled to processing", StatusCancelled, StatusProcessing, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
				t.Errorf("CanTransitionTo(%v -> %v) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestStatusTerminal(t *testing.T) {
	if StatusProcessing.Terminal() {
		t.Error("processing must not be terminal")
	}
	if !StatusCompleted.Terminal() || !StatusCancelled.Terminal() {
		t.Error("completed and cancelled must be terminal")
	}
}

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{StatusProcessing, StatusCompleted, StatusCancelled} {
		if !s.Valid() {
			t.Errorf("%v should be valid", s)
		}
	}
	if Status("shipped").Valid() {
		t.Error("unknown status should not be valid")
	}
}

func TestOrderLineSubtotal(t *testing.T) {
	line := OrderLine{Quantity: 3, PricePerUnit: decimal.RequireFromString("99.99")}
	want := decimal.RequireFromString("299.97")
	if !line.Subtotal().Equal(want) {
		t.Errorf("Subtotal() = %v, want %v", line.Subtotal(), want)
	}
}

func TestActorCanAccessOrder(t *testing.T) {
	order := Order{ID: 1, CustomerID: 7}

	staff := Actor{Role: RoleStaff, EmployeeID: 1}
	if !staff.CanAccessOrder(order) {
		t.Error("staff must access any order")
	}

	owner := Actor{Role: RoleCustomer, CustomerID: 7}
	if !owner.CanAccessOrder(order) {
		t.Error("customer must access own order")
	}

	other := Actor{Role: RoleCustomer, CustomerID: 8}
	if other.CanAccessOrder(order) {
		t.Error("customer must not access someone else's order")
	}
}
