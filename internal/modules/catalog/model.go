package catalog

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when a product id is not in the catalog.
	ErrNotFound = errors.New("product not found")
	// ErrStockExceeded is returned when a deduction asks for more than is on the shelf.
	ErrStockExceeded = errors.New("stock exceeded")
	// ErrInvalidProduct is returned when a product or deduction fails validation.
	ErrInvalidProduct = errors.New("invalid product")
)

// AllCategories is the category label that disables category filtering.
const AllCategories = "Semua"

// Product is a sellable item in the shop's catalog. Prices are whole rupiah.
type Product struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Category string `json:"category"`
	Stock    int    `json:"stock"`
	ImageURL string `json:"image_url,omitempty"`
}

// Validate checks the invariants every stored product must hold.
func (p *Product) Validate() error {
	switch {
	case strings.TrimSpace(p.ID) == "":
		return fmt.Errorf("%w: id is required", ErrInvalidProduct)
	case strings.TrimSpace(p.Name) == "":
		return fmt.Errorf("%w: name is required for %s", ErrInvalidProduct, p.ID)
	case p.Price < 0:
		return fmt.Errorf("%w: price must be >= 0 for %s", ErrInvalidProduct, p.ID)
	case p.Stock < 0:
		return fmt.Errorf("%w: stock must be >= 0 for %s", ErrInvalidProduct, p.ID)
	}
	return nil
}

// Filter narrows a product listing by category and a case-insensitive name fragment.
type Filter struct {
	Category string
	Query    string
}

// Match reports whether p passes the filter.
func (f Filter) Match(p *Product) bool {
	if f.Category != "" && f.Category != AllCategories && p.Category != f.Category {
		return false
	}
	q := strings.TrimSpace(f.Query)
	return q == "" || strings.Contains(strings.ToLower(p.Name), strings.ToLower(q))
}

// Deduction is a stock decrement requested by a checkout.
type Deduction struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// mergeDeductions sums quantities per product, keeping first-seen order.
func mergeDeductions(ds []Deduction) ([]Deduction, error) {
	idx := make(map[string]int, len(ds))
	out := make([]Deduction, 0, len(ds))
	for _, d := range ds {
		if d.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be > 0 for %s", ErrInvalidProduct, d.ProductID)
		}
		if i, ok := idx[d.ProductID]; ok {
			out[i].Quantity += d.Quantity
			continue
		}
		idx[d.ProductID] = len(out)
		out = append(out, d)
	}
	return out, nil
}

func clone(p *Product) *Product {
	c := *p
	return &c
}
