package catalog

import "context"

// Repository defines data access for the catalog store.
type Repository interface {
	// Seed inserts products that are not already present. Existing ids are left untouched.
	Seed(ctx context.Context, products []*Product) error

	// List returns matching products in seed order.
	List(ctx context.Context, f Filter) ([]*Product, error)

	// GetByID returns a copy of one product or ErrNotFound.
	GetByID(ctx context.Context, id string) (*Product, error)

	// Categories returns distinct categories in first-seen order.
	Categories(ctx context.Context) ([]string, error)

	Count(ctx context.Context) (int, error)

	// DeductStock decrements every product by its quantity, or changes nothing
	// and returns ErrStockExceeded / ErrNotFound.
	DeductStock(ctx context.Context, ds []Deduction) error

	// RestockStock adds quantities back. Used to compensate a deduction whose
	// ledger append failed.
	RestockStock(ctx context.Context, ds []Deduction) error
}
