package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart holds the prospective purchases of one owner. Exactly one of UserID
// and SessionID is set; there is at most one cart per owner key.
type Cart struct {
	ID        string     `json:"id"`
	UserID    *string    `json:"userId,omitempty"`
	SessionID *string    `json:"-"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	Items     []CartItem `json:"items,omitempty"`
}

// Subtotal sums the line totals over all items, rounded to two fraction
// digits. An empty cart yields zero.
func (c Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.TotalPrice())
	}
	return total.Round(2)
}

// CartItem is one product variant entry in a cart. (CartID, ProductID,
// VariantID) is unique: adding the same variant again increments Quantity
// on the existing row instead of creating a duplicate.
type CartItem struct {
	ID         string          `json:"id"`
	CartID     string          `json:"cartId"`
	ProductID  string          `json:"productId"`
	VariantID  string          `json:"variantId"`
	Title      string          `json:"title,omitempty"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	Quantity   int             `json:"quantity"`
	UnitWeight decimal.Decimal `json:"unitWeight"`
	ImageURL   string          `json:"imageUrl,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// TotalPrice is UnitPrice multiplied by Quantity.
func (i CartItem) TotalPrice() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// TotalWeight is UnitWeight multiplied by Quantity. A zero UnitWeight means
// the weight is unknown, not that the item is weightless.
func (i CartItem) TotalWeight() decimal.Decimal {
	return i.UnitWeight.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
