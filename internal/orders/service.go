package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/aslbekmam/flower-salon/internal/catalog"
	"github.com/aslbekmam/flower-salon/internal/directory"
	"github.com/aslbekmam/flower-salon/pkg/models"
)

// Catalog is the read-only product access the service needs to price
// order lines at submission time.
type Catalog interface {
	GetProduct(ctx context.Context, id int64) (models.Product, error)
}

// Directory is the read-only party access used to validate references
// and to put display names on listing rows.
type Directory interface {
	FindCustomer(ctx context.Context, id int64) (models.Customer, error)
	FindEmployee(ctx context.Context, id int64) (models.Employee, error)
	ListCustomers(ctx context.Context) ([]models.Customer, error)
	ListEmployees(ctx context.Context) ([]models.Employee, error)
}

// Notifier receives order lifecycle events after they are committed.
// Implementations must not block order processing; failures there never
// fail the triggering request.
type Notifier interface {
	OrderCreated(o models.Order)
	OrderStatusChanged(orderID int64, from, to models.Status)
}

// Draft is a submitted order before pricing: product references and
// quantities only. Prices are captured from the catalog when the draft
// is placed, never later.
type Draft struct {
	CustomerID      int64                `json:"customer_id"`
	EmployeeID      int64                `json:"employee_id"`
	DeliveryDate    time.Time            `json:"delivery_date"`
	DeliveryFrom    string               `json:"delivery_from"`
	DeliveryTo      string               `json:"delivery_to"`
	DeliveryAddress string               `json:"delivery_address"`
	PaymentMethod   models.PaymentMethod `json:"payment_method"`
	IdempotencyKey  string               `json:"idempotency_key,omitempty"`
	Lines           []DraftLine          `json:"lines"`
}

type DraftLine struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

// OrderDetails is the full review view of one order: header, lines and
// the total recomputed from the lines.
type OrderDetails struct {
	Order models.Order       `json:"order"`
	Lines []models.OrderLine `json:"lines"`
	Total decimal.Decimal    `json:"total"`
}

type Service struct {
	repo      Repository
	catalog   Catalog
	directory Directory
	logger    *logrus.Logger
	notifiers []Notifier
}

func NewService(repo Repository, cat Catalog, dir Directory, logger *logrus.Logger, notifiers ...Notifier) *Service {
	return &Service{
		repo:      repo,
		catalog:   cat,
		directory: dir,
		logger:    logger,
		notifiers: notifiers,
	}
}

// PlaceOrder prices the draft against the catalog, validates its party
// references and delegates to the repository. A customer actor may only
// place an order for themselves.
func (s *Service) PlaceOrder(ctx context.Context, actor models.Actor, draft Draft) (int64, error) {
	if len(draft.Lines) == 0 {
		return 0, ErrEmptyCart
	}
	if !actor.IsStaff() && draft.CustomerID != actor.CustomerID {
		return 0, fmt.Errorf("%w: customers may only order for themselves", ErrForbidden)
	}

	if _, err := s.directory.FindCustomer(ctx, draft.CustomerID); err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return 0, fmt.Errorf("%w: customer %d", ErrUnknownParty, draft.CustomerID)
		}
		return 0, err
	}
	if _, err := s.directory.FindEmployee(ctx, draft.EmployeeID); err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return 0, fmt.Errorf("%w: employee %d", ErrUnknownParty, draft.EmployeeID)
		}
		return 0, err
	}

	lines := make([]models.OrderLine, 0, len(draft.Lines))
	for i, dl := range draft.Lines {
		if dl.Quantity <= 0 {
			return 0, fmt.Errorf("%w: line %d quantity must be positive", ErrInvalidInput, i)
		}
		p, err := s.catalog.GetProduct(ctx, dl.ProductID)
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				return 0, fmt.Errorf("%w: product %d", ErrUnknownProduct, dl.ProductID)
			}
			return 0, err
		}
		lines = append(lines, models.OrderLine{
			ProductID:    p.ID,
			ProductName:  p.Name,
			Quantity:     dl.Quantity,
			PricePerUnit: p.UnitPrice,
		})
	}

	id, err := s.repo.Create(ctx, CreateOrder{
		CustomerID:      draft.CustomerID,
		EmployeeID:      draft.EmployeeID,
		DeliveryDate:    draft.DeliveryDate,
		DeliveryFrom:    draft.DeliveryFrom,
		DeliveryTo:      draft.DeliveryTo,
		DeliveryAddress: draft.DeliveryAddress,
		PaymentMethod:   draft.PaymentMethod,
		IdempotencyKey:  draft.IdempotencyKey,
		Lines:           lines,
	})
	if err != nil {
		return 0, err
	}

	s.logger.WithFields(logrus.Fields{
		"order_id":    id,
		"customer_id": draft.CustomerID,
		"lines":       len(lines),
	}).Info("Order placed")

	if len(s.notifiers) > 0 {
		if o, err := s.repo.Get(ctx, id); err == nil {
			for _, n := range s.notifiers {
				n.OrderCreated(o)
			}
		} else {
			s.logger.WithError(err).WithField("order_id", id).Warn("Skipping order created notification")
		}
	}
	return id, nil
}

// ReviewOrder returns the order with its lines and the total recomputed
// from them. The recomputed total must equal the stored one; a mismatch
// is surfaced as ErrTotalMismatch.
func (s *Service) ReviewOrder(ctx context.Context, actor models.Actor, orderID int64) (OrderDetails, error) {
	o, err := s.repo.Get(ctx, orderID)
	if err != nil {
		return OrderDetails{}, err
	}
	if !actor.CanAccessOrder(o) {
		return OrderDetails{}, ErrForbidden
	}
	lines, err := s.repo.Lines(ctx, orderID)
	if err != nil {
		return OrderDetails{}, err
	}

	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	if !total.Equal(o.TotalAmount) {
		s.logger.WithFields(logrus.Fields{
			"order_id": orderID,
			"stored":   o.TotalAmount.String(),
			"computed": total.String(),
		}).Error("Order total mismatch")
		return OrderDetails{}, fmt.Errorf("%w: order %d stored %s, lines sum to %s",
			ErrTotalMismatch, orderID, o.TotalAmount, total)
	}
	return OrderDetails{Order: o, Lines: lines, Total: total}, nil
}

// TransitionStatus moves an order along its lifecycle. Staff only.
func (s *Service) TransitionStatus(ctx context.Context, actor models.Actor, orderID int64, next models.Status) error {
	if !actor.IsStaff() {
		return fmt.Errorf("%w: only staff may change order status", ErrForbidden)
	}
	if !next.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, next)
	}
	from, err := s.repo.UpdateStatus(ctx, orderID, next)
	if err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"order_id": orderID,
		"from":     from,
		"to":       next,
	}).Info("Order status changed")

	for _, n := range s.notifiers {
		n.OrderStatusChanged(orderID, from, next)
	}
	return nil
}

// BrowseOrders lists matching orders enriched with party display names,
// newest first. Staff sees every match; a customer's view is always
// restricted to their own orders, whatever filter they supply.
func (s *Service) BrowseOrders(ctx context.Context, actor models.Actor, f Filter) ([]models.OrderSummary, error) {
	rows, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if !actor.IsStaff() {
		own := rows[:0]
		for _, o := range rows {
			if o.CustomerID == actor.CustomerID {
				own = append(own, o)
			}
		}
		rows = own
	}
	return s.summarize(ctx, rows)
}

// summarize joins customer and employee names onto listing rows. Pure
// read transformation; nothing underneath is mutated.
func (s *Service) summarize(ctx context.Context, rows []models.Order) ([]models.OrderSummary, error) {
	customers, err := s.directory.ListCustomers(ctx)
	if err != nil {
		return nil, err
	}
	employees, err := s.directory.ListEmployees(ctx)
	if err != nil {
		return nil, err
	}
	customerNames := make(map[int64]string, len(customers))
	for _, c := range customers {
		customerNames[c.ID] = c.FullName
	}
	employeeNames := make(map[int64]string, len(employees))
	for _, e := range employees {
		employeeNames[e.ID] = e.FullName
	}

	out := make([]models.OrderSummary, 0, len(rows))
	for _, o := range rows {
		out = append(out, models.OrderSummary{
			Order:        o,
			CustomerName: customerNames[o.CustomerID],
			EmployeeName: employeeNames[o.EmployeeID],
		})
	}
	return out, nil
}
