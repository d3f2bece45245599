package catalog

import "context"

// Service defines catalog read operations. The catalog is seeded at startup and
// its stock is only ever changed by checkout.
type Service interface {
	ListProducts(ctx context.Context, f Filter) ([]*Product, error)
	GetProduct(ctx context.Context, id string) (*Product, error)
	ListCategories(ctx context.Context) ([]string, error)
}

type service struct{ repo Repository }

func NewService(repo Repository) Service { return &service{repo: repo} }

func (s *service) ListProducts(ctx context.Context, f Filter) ([]*Product, error) {
	products, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []*Product{}
	}
	return products, nil
}

func (s *service) GetProduct(ctx context.Context, id string) (*Product, error) {
	return s.repo.GetByID(ctx, id)
}

// ListCategories prepends AllCategories so clients can render the filter bar directly.
func (s *service) ListCategories(ctx context.Context) ([]string, error) {
	cats, err := s.repo.Categories(ctx)
	if err != nil {
		return nil, err
	}
	return append([]string{AllCategories}, cats...), nil
}
