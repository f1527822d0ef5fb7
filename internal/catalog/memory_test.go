package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/aslbekmam/flower-salon/pkg/models"
)

func TestMemoryStore_ListSortedByName(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.Add(models.Product{Name: "Tulip", Category: "Flowers", UnitPrice: decimal.NewFromInt(50), Unit: "pc"})
	store.Add(models.Product{Name: "Rose", Category: "Flowers", UnitPrice: decimal.NewFromInt(100), Unit: "pc"})
	store.Add(models.Product{Name: "Chrysanthemum", Category: "Flowers", UnitPrice: decimal.NewFromInt(70), Unit: "pc"})

	products, err := store.ListProducts(ctx)
	if err != nil {
		t.Fatalf("ListProducts: %v", err)
	}
	if len(products) != 3 {
		t.Fatalf("expected 3 products, got %d", len(products))
	}
	for i := 1; i < len(products); i++ {
		if products[i-1].Name > products[i].Name {
			t.Fatalf("products not sorted by name: %q before %q", products[i-1].Name, products[i].Name)
		}
	}
}

func TestMemoryStore_GetProduct(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	p := store.Add(models.Product{Name: "Rose", UnitPrice: decimal.NewFromInt(100)})

	got, err := store.GetProduct(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	if got.Name != "Rose" || !got.UnitPrice.Equal(decimal.NewFromInt(100)) {
		t.Errorf("unexpected product %+v", got)
	}

	if _, err := store.GetProduct(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
