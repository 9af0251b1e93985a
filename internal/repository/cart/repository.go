package cart

import (
	"context"

	"github.com/shopspring/decimal"

	"nature-animaux/internal/domain"
)

// OwnerKey identifies the owner of a cart: an authenticated user or an
// anonymous session, never both.
type OwnerKey struct {
	UserID    *string
	SessionID *string
}

// AddItemInput carries the attributes of a new line item. When the cart
// already holds the same (ProductID, VariantID) pair only Quantity is
// applied, as an increment on the existing row.
type AddItemInput struct {
	ProductID  string
	VariantID  string
	Title      string
	UnitPrice  decimal.Decimal
	Quantity   int
	UnitWeight decimal.Decimal
	ImageURL   string
}

type Repository interface {
	// GetOrCreate resolves the owner's cart, creating an empty one on
	// first use. Idempotent per owner key.
	GetOrCreate(ctx context.Context, owner OwnerKey) (*domain.Cart, error)
	GetByID(ctx context.Context, id string) (*domain.Cart, error)
	// AddItem inserts a line item or increments the quantity of the
	// matching (product, variant) row, atomically.
	AddItem(ctx context.Context, cartID string, in AddItemInput) (*domain.CartItem, error)
	// SetItemQuantity stores max(1, quantity) on the item.
	SetItemQuantity(ctx context.Context, cartID, itemID string, quantity int) (*domain.CartItem, error)
	RemoveItem(ctx context.Context, cartID, itemID string) error
}
