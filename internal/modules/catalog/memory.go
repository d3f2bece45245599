package catalog

import (
	"context"
	"fmt"
	"sync"
)

type memoryRepo struct {
	mu       sync.RWMutex
	order    []string
	products map[string]*Product
}

// NewMemoryRepository returns a process-local catalog store.
func NewMemoryRepository() Repository {
	return &memoryRepo{products: make(map[string]*Product)}
}

func (r *memoryRepo) Seed(ctx context.Context, products []*Product) error {
	for _, p := range products {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range products {
		if _, ok := r.products[p.ID]; ok {
			continue
		}
		r.products[p.ID] = clone(p)
		r.order = append(r.order, p.ID)
	}
	return nil
}

func (r *memoryRepo) List(ctx context.Context, f Filter) ([]*Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Product, 0, len(r.order))
	for _, id := range r.order {
		if p := r.products[id]; f.Match(p) {
			out = append(out, clone(p))
		}
	}
	return out, nil
}

func (r *memoryRepo) GetByID(ctx context.Context, id string) (*Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return clone(p), nil
}

func (r *memoryRepo) Categories(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]bool)
	var cats []string
	for _, id := range r.order {
		c := r.products[id].Category
		if !seen[c] {
			seen[c] = true
			cats = append(cats, c)
		}
	}
	return cats, nil
}

func (r *memoryRepo) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.products), nil
}

func (r *memoryRepo) DeductStock(ctx context.Context, ds []Deduction) error {
	merged, err := mergeDeductions(ds)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	// check everything first so a failure leaves no partial decrement
	for _, d := range merged {
		p, ok := r.products[d.ProductID]
		if !ok {
			return fmt.Errorf("%w: %s", ErrNotFound, d.ProductID)
		}
		if p.Stock < d.Quantity {
			return fmt.Errorf("%w: %s requested %d, available %d", ErrStockExceeded, p.ID, d.Quantity, p.Stock)
		}
	}
	for _, d := range merged {
		r.products[d.ProductID].Stock -= d.Quantity
	}
	return nil
}

func (r *memoryRepo) RestockStock(ctx context.Context, ds []Deduction) error {
	merged, err := mergeDeductions(ds)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range merged {
		if _, ok := r.products[d.ProductID]; !ok {
			return fmt.Errorf("%w: %s", ErrNotFound, d.ProductID)
		}
	}
	for _, d := range merged {
		r.products[d.ProductID].Stock += d.Quantity
	}
	return nil
}
