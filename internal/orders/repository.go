// Package orders holds the order management engine: the repository that
// owns all writes to orders and their lines, the service that runs the
// business use cases on top of it, and the filtered listing views.
package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aslbekmam/flower-salon/pkg/models"
)

var (
	// ErrInvalidInput marks caller-correctable precondition violations.
	// These are terminal for the request and must not be retried.
	ErrInvalidInput = errors.New("invalid input")
	ErrEmptyCart    = errors.New("order has no lines")
	ErrNotFound     = errors.New("order not found")

	ErrUnknownProduct = errors.New("unknown product")
	ErrUnknownParty   = errors.New("unknown party")
	ErrForbidden      = errors.New("forbidden")

	// ErrInvalidTransition rejects illegal status state-machine edges.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrConflict reports a status write that lost to a concurrent
	// transition; the caller must re-read before deciding again.
	ErrConflict = errors.New("order changed concurrently")

	// ErrTotalMismatch flags a stored total that disagrees with the
	// order's line items. It is reported, never silently corrected.
	ErrTotalMismatch = errors.New("stored total does not match line items")
)

// Filter selects orders for listing. Both fields are optional and
// combine with AND; a nil field matches everything. Date matches the
// order timestamp truncated to its day.
type Filter struct {
	Status *models.Status
	Date   *time.Time
}

// CreateOrder is the priced input of Repository.Create. Lines carry
// price snapshots already resolved by the caller; the repository only
// sums them, it never consults the catalog.
type CreateOrder struct {
	CustomerID      int64
	EmployeeID      int64
	DeliveryDate    time.Time
	DeliveryFrom    string
	DeliveryTo      string
	DeliveryAddress string
	PaymentMethod   models.PaymentMethod
	IdempotencyKey  string
	Lines           []models.OrderLine
}

func (c CreateOrder) validate() error {
	if len(c.Lines) == 0 {
		return fmt.Errorf("%w: order needs at least one line", ErrInvalidInput)
	}
	for i, l := range c.Lines {
		if l.ProductID <= 0 {
			return fmt.Errorf("%w: line %d has no product", ErrInvalidInput, i)
		}
		if l.Quantity <= 0 {
			return fmt.Errorf("%w: line %d quantity must be positive", ErrInvalidInput, i)
		}
	}
	if c.CustomerID <= 0 || c.EmployeeID <= 0 {
		return fmt.Errorf("%w: customer and employee are required", ErrInvalidInput)
	}
	if strings.TrimSpace(c.DeliveryAddress) == "" {
		return fmt.Errorf("%w: delivery address is required", ErrInvalidInput)
	}
	if c.DeliveryDate.IsZero() {
		return fmt.Errorf("%w: delivery date is required", ErrInvalidInput)
	}
	from, err := parseClock(c.DeliveryFrom)
	if err != nil {
		return fmt.Errorf("%w: bad delivery window start %q", ErrInvalidInput, c.DeliveryFrom)
	}
	to, err := parseClock(c.DeliveryTo)
	if err != nil {
		return fmt.Errorf("%w: bad delivery window end %q", ErrInvalidInput, c.DeliveryTo)
	}
	if !from.Before(to) {
		return fmt.Errorf("%w: delivery window start must precede end", ErrInvalidInput)
	}
	if !c.PaymentMethod.Valid() {
		return fmt.Errorf("%w: unknown payment method %q", ErrInvalidInput, c.PaymentMethod)
	}
	return nil
}

func (c CreateOrder) total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

func parseClock(s string) (time.Time, error) {
	return time.Parse("15:04", s)
}

// Repository owns persistence of orders and their lines. It is the only
// component allowed to write them. Create persists the header and every
// line as one atomic unit; on failure nothing is visible to readers and
// the whole operation is safe to retry.
type Repository interface {
	Create(ctx context.Context, c CreateOrder) (int64, error)
	Get(ctx context.Context, id int64) (models.Order, error)
	Lines(ctx context.Context, orderID int64) ([]models.OrderLine, error)
	// UpdateStatus returns the status the order held immediately before
	// the write, so callers report the real transition edge.
	UpdateStatus(ctx context.Context, orderID int64, next models.Status) (models.Status, error)
	List(ctx context.Context, f Filter) ([]models.Order, error)
}

// sameDay compares calendar days in UTC, matching how the Postgres
// repository truncates order timestamps for the date filter.
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
