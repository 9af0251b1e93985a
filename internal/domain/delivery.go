package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DeliveryMode enumerates the supported fulfilment modes.
type DeliveryMode string

const (
	ModePickup       DeliveryMode = "retrait"
	ModeStandard     DeliveryMode = "livraison"
	ModeMondialRelay DeliveryMode = "mondial_relay"
	ModeChronopost   DeliveryMode = "chronopost"
	ModeColissimo    DeliveryMode = "colissimo"
)

// Valid reports whether m is one of the known delivery modes.
func (m DeliveryMode) Valid() bool {
	switch m {
	case ModePickup, ModeStandard, ModeMondialRelay, ModeChronopost, ModeColissimo:
		return true
	}
	return false
}

// Label returns the display name shown to clients.
func (m DeliveryMode) Label() string {
	switch m {
	case ModePickup:
		return "Retrait en dépôt"
	case ModeStandard:
		return "Livraison standard"
	case ModeMondialRelay:
		return "Mondial Relay"
	case ModeChronopost:
		return "Chronopost"
	case ModeColissimo:
		return "Colissimo"
	}
	return string(m)
}

// DeliveryChoice records a selected mode and its quoted fee. It belongs to
// either a cart (pre-order selection) or an order (finalization), never
// both. Reselecting overwrites the previous mode and fee.
type DeliveryChoice struct {
	ID        string          `json:"id"`
	CartID    *string         `json:"cartId,omitempty"`
	OrderID   *string         `json:"orderId,omitempty"`
	Mode      DeliveryMode    `json:"mode"`
	Fee       decimal.Decimal `json:"fee"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}
