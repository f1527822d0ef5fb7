package directory

import (
	"context"
	"errors"
	"testing"

	"github.com/aslbekmam/flower-salon/pkg/models"
)

func TestMemoryDirectory_ListSortedByName(t *testing.T) {
	ctx := context.Background()
	dir := NewMemoryDirectory()
	dir.AddCustomer(models.Customer{FullName: "Sidorova Anna", Email: "anna@example.com"})
	dir.AddCustomer(models.Customer{FullName: "Ivanov Ivan", Email: "ivan@example.com"})
	dir.AddEmployee(models.Employee{FullName: "Petrova Olga", Email: "olga@example.com", Position: "florist"})

	customers, err := dir.ListCustomers(ctx)
	if err != nil {
		t.Fatalf("ListCustomers: %v", err)
	}
	if len(customers) != 2 || customers[0].FullName != "Ivanov Ivan" {
		t.Errorf("customers not sorted by name: %+v", customers)
	}

	employees, err := dir.ListEmployees(ctx)
	if err != nil {
		t.Fatalf("ListEmployees: %v", err)
	}
	if len(employees) != 1 || employees[0].Position != "florist" {
		t.Errorf("unexpected employees: %+v", employees)
	}
}

func TestMemoryDirectory_Find(t *testing.T) {
	ctx := context.Background()
	dir := NewMemoryDirectory()
	c := dir.AddCustomer(models.Customer{FullName: "Ivanov Ivan", Email: "ivan@example.com"})

	got, err := dir.FindCustomer(ctx, c.ID)
	if err != nil || got.FullName != "Ivanov Ivan" {
		t.Fatalf("FindCustomer: %v %+v", err, got)
	}
	if _, err := dir.FindCustomer(ctx, 99); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := dir.FindEmployee(ctx, 99); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStaticAuthenticator(t *testing.T) {
	ctx := context.Background()
	auth := NewStaticAuthenticator()
	auth.Register("admin", "admin", models.Actor{Role: models.RoleStaff, EmployeeID: 1})
	auth.Register("client", "client", models.Actor{Role: models.RoleCustomer, CustomerID: 1})

	actor, err := auth.Authenticate(ctx, "admin", "admin")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if !actor.IsStaff() || actor.EmployeeID != 1 {
		t.Errorf("unexpected actor %+v", actor)
	}

	actor, err = auth.Authenticate(ctx, "client", "client")
	if err != nil || actor.IsStaff() || actor.CustomerID != 1 {
		t.Fatalf("Authenticate customer: %v %+v", err, actor)
	}

	if _, err := auth.Authenticate(ctx, "admin", "wrong"); !errors.Is(err, ErrBadCredentials) {
		t.Errorf("expected ErrBadCredentials, got %v", err)
	}
	if _, err := auth.Authenticate(ctx, "ghost", "x"); !errors.Is(err, ErrBadCredentials) {
		t.Errorf("expected ErrBadCredentials, got %v", err)
	}
}

func TestChainAuthenticator(t *testing.T) {
	ctx := context.Background()
	first := NewStaticAuthenticator()
	first.Register("admin", "admin", models.Actor{Role: models.RoleStaff, EmployeeID: 1})
	second := NewStaticAuthenticator()
	second.Register("client", "client", models.Actor{Role: models.RoleCustomer, CustomerID: 2})

	chain := ChainAuthenticator{first, second}

	if actor, err := chain.Authenticate(ctx, "client", "client"); err != nil || actor.CustomerID != 2 {
		t.Fatalf("chain fallthrough failed: %v %+v", err, actor)
	}
	if _, err := chain.Authenticate(ctx, "nobody", "x"); !errors.Is(err, ErrBadCredentials) {
		t.Errorf("expected ErrBadCredentials, got %v", err)
	}
}
