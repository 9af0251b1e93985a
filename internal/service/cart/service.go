package cart

import (
	"context"
	"errors"
	"log"

	"github.com/shopspring/decimal"

	"nature-animaux/internal/catalog"
	"nature-animaux/internal/domain"
	"nature-animaux/internal/rates"
	cartrepo "nature-animaux/internal/repository/cart"
)

type Service struct {
	repo       cartRepo
	deliveries deliveryRepo
	catalog    catalog.Lookup
	logger     *log.Logger
}

type cartRepo interface {
	GetOrCreate(ctx context.Context, owner cartrepo.OwnerKey) (*domain.Cart, error)
	AddItem(ctx context.Context, cartID string, in cartrepo.AddItemInput) (*domain.CartItem, error)
	SetItemQuantity(ctx context.Context, cartID, itemID string, quantity int) (*domain.CartItem, error)
	RemoveItem(ctx context.Context, cartID, itemID string) error
}

type deliveryRepo interface {
	UpsertForCart(ctx context.Context, cartID string, mode domain.DeliveryMode, fee decimal.Decimal) (*domain.DeliveryChoice, error)
	GetForCart(ctx context.Context, cartID string) (*domain.DeliveryChoice, error)
}

func New(repo cartrepo.Repository, deliveries deliveryRepo, lookup catalog.Lookup, logger *log.Logger) *Service {
	return &Service{repo: repo, deliveries: deliveries, catalog: lookup, logger: logger}
}

type AddItemInput struct {
	ProductID  string          `json:"product_id"`
	VariantID  string          `json:"variant_id"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Title      string          `json:"product_title"`
	ImageURL   string          `json:"image_url"`
	UnitWeight decimal.Decimal `json:"weight"`
}

// ItemView is the per-item snapshot rendered in cart and estimate
// responses. ResolvedWeight already includes the catalog fallback.
type ItemView struct {
	ID             string
	ProductID      string
	VariantID      string
	Title          string
	UnitPrice      decimal.Decimal
	Quantity       int
	TotalPrice     decimal.Decimal
	ResolvedWeight decimal.Decimal
	ImageURL       string
}

// Summary is the priced view of a cart.
type Summary struct {
	Cart        *domain.Cart
	Items       []ItemView
	Subtotal    decimal.Decimal
	TotalWeight decimal.Decimal
	Delivery    *domain.DeliveryChoice
}

// Estimate extends Summary with carrier quotes. QuotedWeight is the weight
// the rate table was fed: the total, floored to 1 kg when nothing in the
// cart carries a resolvable weight.
type Estimate struct {
	Summary
	QuotedWeight decimal.Decimal
	Options      []rates.Option
}

func (s *Service) GetOrCreate(ctx context.Context, owner cartrepo.OwnerKey) (*domain.Cart, error) {
	return s.repo.GetOrCreate(ctx, owner)
}

func (s *Service) AddItem(ctx context.Context, owner cartrepo.OwnerKey, in AddItemInput) (*domain.CartItem, error) {
	if in.ProductID == "" {
		return nil, domain.Validation("product_id", "required")
	}
	if in.VariantID == "" {
		return nil, domain.Validation("variant_id", "required")
	}
	if in.Quantity < 1 {
		return nil, domain.Validation("quantity", "must be at least 1")
	}
	if in.UnitPrice.IsNegative() {
		return nil, domain.Validation("unit_price", "must not be negative")
	}
	if in.UnitWeight.IsNegative() {
		return nil, domain.Validation("weight", "must not be negative")
	}

	cart, err := s.repo.GetOrCreate(ctx, owner)
	if err != nil {
		return nil, err
	}
	return s.repo.AddItem(ctx, cart.ID, cartrepo.AddItemInput{
		ProductID:  in.ProductID,
		VariantID:  in.VariantID,
		Title:      in.Title,
		UnitPrice:  in.UnitPrice,
		Quantity:   in.Quantity,
		UnitWeight: in.UnitWeight,
		ImageURL:   in.ImageURL,
	})
}

func (s *Service) SetQuantity(ctx context.Context, owner cartrepo.OwnerKey, itemID string, quantity int) (*domain.CartItem, error) {
	cart, err := s.repo.GetOrCreate(ctx, owner)
	if err != nil {
		return nil, err
	}
	return s.repo.SetItemQuantity(ctx, cart.ID, itemID, quantity)
}

func (s *Service) RemoveItem(ctx context.Context, owner cartrepo.OwnerKey, itemID string) error {
	cart, err := s.repo.GetOrCreate(ctx, owner)
	if err != nil {
		return err
	}
	return s.repo.RemoveItem(ctx, cart.ID, itemID)
}

// SelectDelivery records the owner's pre-order carrier choice on the cart,
// overwriting any previous selection.
func (s *Service) SelectDelivery(ctx context.Context, owner cartrepo.OwnerKey, mode domain.DeliveryMode, fee decimal.Decimal) (*domain.DeliveryChoice, error) {
	if !mode.Valid() {
		return nil, domain.Validation("mode", "unknown delivery mode")
	}
	if fee.IsNegative() {
		return nil, domain.Validation("fee", "must not be negative")
	}
	cart, err := s.repo.GetOrCreate(ctx, owner)
	if err != nil {
		return nil, err
	}
	return s.deliveries.UpsertForCart(ctx, cart.ID, mode, fee)
}

// Summary prices the owner's cart: per-item totals in insertion order, the
// rounded subtotal, and the aggregate weight with catalog fallback.
func (s *Service) Summary(ctx context.Context, owner cartrepo.OwnerKey) (*Summary, error) {
	cart, err := s.repo.GetOrCreate(ctx, owner)
	if err != nil {
		return nil, err
	}

	items := make([]ItemView, 0, len(cart.Items))
	subtotal := decimal.Zero
	totalWeight := decimal.Zero
	for _, item := range cart.Items {
		unitWeight := s.resolveUnitWeight(ctx, item)
		lineWeight := unitWeight.Mul(decimal.NewFromInt(int64(item.Quantity)))
		items = append(items, ItemView{
			ID:             item.ID,
			ProductID:      item.ProductID,
			VariantID:      item.VariantID,
			Title:          item.Title,
			UnitPrice:      item.UnitPrice,
			Quantity:       item.Quantity,
			TotalPrice:     item.TotalPrice(),
			ResolvedWeight: lineWeight,
			ImageURL:       item.ImageURL,
		})
		subtotal = subtotal.Add(item.TotalPrice())
		totalWeight = totalWeight.Add(lineWeight)
	}

	summary := &Summary{
		Cart:        cart,
		Items:       items,
		Subtotal:    subtotal.Round(2),
		TotalWeight: totalWeight,
	}
	if choice, err := s.deliveries.GetForCart(ctx, cart.ID); err == nil {
		summary.Delivery = choice
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	return summary, nil
}

// Estimate quotes every carrier for the cart's current weight.
func (s *Service) Estimate(ctx context.Context, owner cartrepo.OwnerKey) (*Estimate, error) {
	summary, err := s.Summary(ctx, owner)
	if err != nil {
		return nil, err
	}
	quoted := FloorWeight(summary.TotalWeight)
	return &Estimate{
		Summary:      *summary,
		QuotedWeight: quoted,
		Options:      rates.Options(quoted),
	}, nil
}

// FloorWeight substitutes 1 kg for a zero aggregate weight so estimates
// always quote the lowest carrier bracket instead of an undefined case.
// The floor applies to the grand total only, never per item.
func FloorWeight(totalWeight decimal.Decimal) decimal.Decimal {
	if totalWeight.IsZero() {
		return decimal.NewFromInt(1)
	}
	return totalWeight
}

// resolveUnitWeight prefers the stored item weight; when that is zero
// (unknown) it consults the catalog for the variant. Lookup failures of
// any kind degrade to zero weight, never to a request failure, and the
// stored item is left unchanged.
func (s *Service) resolveUnitWeight(ctx context.Context, item domain.CartItem) decimal.Decimal {
	if item.UnitWeight.IsPositive() {
		return item.UnitWeight
	}
	variant, err := s.catalog.FindVariant(ctx, item.ProductID, item.VariantID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) && s.logger != nil {
			s.logger.Printf("catalog weight fallback for %s/%s: %v", item.ProductID, item.VariantID, err)
		}
		return decimal.Zero
	}
	if variant.Weight.IsNegative() {
		return decimal.Zero
	}
	return variant.Weight
}
