package catalog

import "context"

// StaticProvider serves a fixed product list. Used in development mode and
// in tests, where no catalog API is running.
type StaticProvider struct {
	products map[string]Product
}

func NewStaticProvider(products []Product) *StaticProvider {
	m := make(map[string]Product, len(products))
	for _, p := range products {
		m[p.ID] = p
	}
	return &StaticProvider{products: m}
}

func (s *StaticProvider) GetProduct(_ context.Context, id string) (*Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	return &p, nil
}
