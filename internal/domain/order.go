package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is a snapshot of a cart taken at checkout. A cart has at most one
// order. TotalPrice starts as the cart subtotal and is updated once when a
// delivery choice is applied; nothing else mutates an order.
type Order struct {
	ID         string          `json:"id"`
	UserID     string          `json:"userId"`
	CartID     string          `json:"cartId"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
	Delivery   *DeliveryChoice `json:"deliveryChoice,omitempty"`
}
