package order

import (
	"context"

	"github.com/shopspring/decimal"

	"nature-animaux/internal/domain"
)

type Repository interface {
	// Create inserts the one order a cart may ever have. A second create
	// for the same cart fails with domain.ErrConflict.
	Create(ctx context.Context, userID, cartID string, total decimal.Decimal) (*domain.Order, error)
	// GetForUser fetches an order scoped to its owner. The total is only
	// ever mutated by the delivery repository, inside the transaction that
	// changes the choice.
	GetForUser(ctx context.Context, id, userID string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
}
