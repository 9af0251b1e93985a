// Package catalog exposes the product catalog to the rest of the backend.
//
// Products live in a document store as loosely shaped records; everything
// here is validated into domain types before it crosses the boundary.
package catalog

import (
	"context"

	"nature-animaux/internal/domain"
)

// Lookup resolves product variants. Implementations return
// domain.ErrNotFound when either the product or the variant is missing and
// domain.ErrUnavailable when the store cannot be reached.
type Lookup interface {
	FindByID(ctx context.Context, productID string) (*domain.Product, error)
	FindVariant(ctx context.Context, productID, variantID string) (*domain.Variation, error)
}
