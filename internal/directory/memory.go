package directory

import (
	"context"
	"sort"
	"sync"

	"github.com/aslbekmam/flower-salon/pkg/models"
)

// MemoryDirectory is an in-memory party directory used by tests and the
// memory storage mode.
type MemoryDirectory struct {
	mu             sync.RWMutex
	nextCustomerID int64
	nextEmployeeID int64
	customers      map[int64]models.Customer
	employees      map[int64]models.Employee
}

func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{
		nextCustomerID: 1,
		nextEmployeeID: 1,
		customers:      make(map[int64]models.Customer),
		employees:      make(map[int64]models.Employee),
	}
}

func (d *MemoryDirectory) AddCustomer(c models.Customer) models.Customer {
	d.mu.Lock()
	defer d.mu.Unlock()
	if c.ID == 0 {
		c.ID = d.nextCustomerID
		d.nextCustomerID++
	} else if c.ID >= d.nextCustomerID {
		d.nextCustomerID = c.ID + 1
	}
	d.customers[c.ID] = c
	return c
}

func (d *MemoryDirectory) AddEmployee(e models.Employee) models.Employee {
	d.mu.Lock()
	defer d.mu.Unlock()
	if e.ID == 0 {
		e.ID = d.nextEmployeeID
		d.nextEmployeeID++
	} else if e.ID >= d.nextEmployeeID {
		d.nextEmployeeID = e.ID + 1
	}
	d.employees[e.ID] = e
	return e
}

func (d *MemoryDirectory) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]models.Customer, 0, len(d.customers))
	for _, c := range d.customers {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

func (d *MemoryDirectory) ListEmployees(ctx context.Context) ([]models.Employee, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]models.Employee, 0, len(d.employees))
	for _, e := range d.employees {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

func (d *MemoryDirectory) FindCustomer(ctx context.Context, id int64) (models.Customer, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	c, ok := d.customers[id]
	if !ok {
		return models.Customer{}, ErrNotFound
	}
	return c, nil
}

func (d *MemoryDirectory) FindEmployee(ctx context.Context, id int64) (models.Employee, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	e, ok := d.employees[id]
	if !ok {
		return models.Employee{}, ErrNotFound
	}
	return e, nil
}
