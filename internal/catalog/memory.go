package catalog

import (
	"context"
	"sort"
	"sync"

	"github.com/aslbekmam/flower-salon/pkg/models"
)

// MemoryStore is an in-memory catalog used by tests and the memory
// storage mode.
type MemoryStore struct {
	mu       sync.RWMutex
	nextID   int64
	products map[int64]models.Product
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1, products: make(map[int64]models.Product)}
}

// Add registers a product, assigning an ID when none is set, and returns
// the stored copy.
func (s *MemoryStore) Add(p models.Product) models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		p.ID = s.nextID
		s.nextID++
	} else if p.ID >= s.nextID {
		s.nextID = p.ID + 1
	}
	s.products[p.ID] = p
	return p
}

func (s *MemoryStore) ListProducts(ctx context.Context) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) GetProduct(ctx context.Context, id int64) (models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return models.Product{}, ErrNotFound
	}
	return p, nil
}
