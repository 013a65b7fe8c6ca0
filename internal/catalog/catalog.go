package catalog

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// Product is a read-only catalog record. The cart copies what it needs at
// add time and never re-queries, so a Product is only ever a snapshot source.
type Product struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Price         decimal.Decimal  `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discountPrice,omitempty"`
	Stock         int              `json:"stock,omitempty"`
	Category      string           `json:"category,omitempty"`
	ImageURL      string           `json:"image,omitempty"`
}

// Provider is the catalog lookup contract.
// Consumers define this interface, not the catalog implementation.
type Provider interface {
	GetProduct(ctx context.Context, id string) (*Product, error)
}

var ErrProductNotFound = errors.New("product not found")
