package orders

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/aslbekmam/flower-salon/pkg/models"
)

// errStorage stands in for a transient backing-store fault in the memory
// repository; tests inject it to exercise rollback behavior.
var errStorage = errors.New("storage failure")

// MemoryRepository keeps orders in process memory behind an RWMutex.
// It backs the tests and the memory storage mode with the same
// atomicity contract as the Postgres repository: Create either commits
// the header and every line or nothing at all.
type MemoryRepository struct {
	mu     sync.RWMutex
	nextID int64
	orders map[int64]models.Order
	lines  map[int64][]models.OrderLine
	byKey  map[string]int64

	// failAfterLines > 0 makes Create fail after staging that many
	// lines, before anything becomes visible. Test hook.
	failAfterLines int
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		nextID: 1,
		orders: make(map[int64]models.Order),
		lines:  make(map[int64][]models.OrderLine),
		byKey:  make(map[string]int64),
	}
}

var _ Repository = (*MemoryRepository)(nil)

func (r *MemoryRepository) Create(ctx context.Context, c CreateOrder) (int64, error) {
	if err := c.validate(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if c.IdempotencyKey != "" {
		if id, ok := r.byKey[c.IdempotencyKey]; ok {
			return id, nil
		}
	}

	staged := make([]models.OrderLine, 0, len(c.Lines))
	for i, l := range c.Lines {
		if r.failAfterLines > 0 && i == r.failAfterLines {
			return 0, fmt.Errorf("insert order line %d: %w", i, errStorage)
		}
		staged = append(staged, l)
	}

	id := r.nextID
	r.nextID++
	o := models.Order{
		ID:              id,
		CustomerID:      c.CustomerID,
		EmployeeID:      c.EmployeeID,
		CreatedAt:       time.Now().UTC(),
		DeliveryDate:    c.DeliveryDate,
		DeliveryFrom:    c.DeliveryFrom,
		DeliveryTo:      c.DeliveryTo,
		DeliveryAddress: c.DeliveryAddress,
		Status:          models.StatusProcessing,
		TotalAmount:     c.total(),
		PaymentMethod:   c.PaymentMethod,
	}
	for i := range staged {
		staged[i].OrderID = id
	}
	r.orders[id] = o
	r.lines[id] = staged
	if c.IdempotencyKey != "" {
		r.byKey[c.IdempotencyKey] = id
	}
	return id, nil
}

func (r *MemoryRepository) Get(ctx context.Context, id int64) (models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[id]
	if !ok {
		return models.Order{}, ErrNotFound
	}
	return o, nil
}

func (r *MemoryRepository) Lines(ctx context.Context, orderID int64) ([]models.OrderLine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	lines, ok := r.lines[orderID]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]models.OrderLine, len(lines))
	copy(out, lines)
	return out, nil
}

func (r *MemoryRepository) UpdateStatus(ctx context.Context, orderID int64, next models.Status) (models.Status, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok {
		return "", ErrNotFound
	}
	if !o.Status.CanTransitionTo(next) {
		return "", fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, next)
	}
	prior := o.Status
	o.Status = next
	r.orders[orderID] = o
	return prior, nil
}

func (r *MemoryRepository) List(ctx context.Context, f Filter) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Order, 0, len(r.orders))
	for _, o := range r.orders {
		if f.Status != nil && o.Status != *f.Status {
			continue
		}
		if f.Date != nil && !sameDay(o.CreatedAt, *f.Date) {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// setOrder overwrites a stored header directly, bypassing all
// invariants. Test hook for simulating corrupted state.
func (r *MemoryRepository) setOrder(o models.Order) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[o.ID] = o
}
