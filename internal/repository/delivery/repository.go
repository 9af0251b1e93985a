package delivery

import (
	"context"

	"github.com/shopspring/decimal"

	"nature-animaux/internal/domain"
)

// Repository persists delivery choices. A choice belongs to a cart or to an
// order; per owner there is at most one, and upserts overwrite it.
type Repository interface {
	UpsertForCart(ctx context.Context, cartID string, mode domain.DeliveryMode, fee decimal.Decimal) (*domain.DeliveryChoice, error)
	GetForCart(ctx context.Context, cartID string) (*domain.DeliveryChoice, error)
	// ApplyToOrder upserts the order's delivery choice and recomputes the
	// order total as cart subtotal plus fee, all in one transaction. The
	// new total is returned alongside the choice.
	ApplyToOrder(ctx context.Context, orderID string, mode domain.DeliveryMode, fee decimal.Decimal) (*domain.DeliveryChoice, decimal.Decimal, error)
	// ListByUser returns the choices attached to the user's orders,
	// newest first.
	ListByUser(ctx context.Context, userID string) ([]domain.DeliveryChoice, error)
	// DeleteForUser removes an order-attached choice scoped to the order's
	// owner and resets the order total to the bare cart subtotal, in the
	// same transaction.
	DeleteForUser(ctx context.Context, id, userID string) error
}
