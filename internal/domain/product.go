package domain

import "github.com/shopspring/decimal"

// Product is a catalog entry as exposed by the catalog lookup boundary.
// Catalog documents are stored loosely; they are validated into this fixed
// shape before any pricing code sees them.
type Product struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"imageUrl,omitempty"`
	Variations  []Variation     `json:"variations,omitempty"`
}

// Variation is one purchasable configuration (SKU) of a product. Weight is
// in kilograms; zero means unknown.
type Variation struct {
	SKU    string          `json:"sku"`
	Price  decimal.Decimal `json:"price"`
	Weight decimal.Decimal `json:"weight"`
	Stock  int             `json:"stock"`
}
