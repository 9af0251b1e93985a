package order

import (
	"context"

	"github.com/shopspring/decimal"

	"nature-animaux/internal/domain"
)

type Service struct {
	orders     orderRepo
	carts      cartRepo
	deliveries deliveryRepo
}

type orderRepo interface {
	Create(ctx context.Context, userID, cartID string, total decimal.Decimal) (*domain.Order, error)
	GetForUser(ctx context.Context, id, userID string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
}

type cartRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Cart, error)
}

type deliveryRepo interface {
	ApplyToOrder(ctx context.Context, orderID string, mode domain.DeliveryMode, fee decimal.Decimal) (*domain.DeliveryChoice, decimal.Decimal, error)
	ListByUser(ctx context.Context, userID string) ([]domain.DeliveryChoice, error)
	DeleteForUser(ctx context.Context, id, userID string) error
}

func New(orders orderRepo, carts cartRepo, deliveries deliveryRepo) *Service {
	return &Service{orders: orders, carts: carts, deliveries: deliveries}
}

// Create snapshots a cart into an order. The total is the cart subtotal at
// creation time; the delivery fee is added later by ApplyDelivery. A cart
// that already has an order fails with domain.ErrConflict.
func (s *Service) Create(ctx context.Context, userID, cartID string) (*domain.Order, error) {
	if cartID == "" {
		return nil, domain.Validation("cart_id", "required")
	}
	cart, err := s.carts.GetByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	return s.orders.Create(ctx, userID, cart.ID, cart.Subtotal())
}

// ApplyDelivery sets the order's delivery choice and recomputes the total
// as cart subtotal plus fee. Reselecting overwrites, it never accumulates.
// The choice upsert and the total write happen in one storage transaction,
// so the order can never carry a choice with a mismatched total.
func (s *Service) ApplyDelivery(ctx context.Context, userID, orderID string, mode domain.DeliveryMode, fee decimal.Decimal) (*domain.Order, error) {
	if !mode.Valid() {
		return nil, domain.Validation("mode", "unknown delivery mode")
	}
	if fee.IsNegative() {
		return nil, domain.Validation("fee", "must not be negative")
	}

	order, err := s.orders.GetForUser(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}

	choice, total, err := s.deliveries.ApplyToOrder(ctx, order.ID, mode, fee)
	if err != nil {
		return nil, err
	}
	order.TotalPrice = total
	order.Delivery = choice
	return order, nil
}

func (s *Service) Get(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	return s.orders.GetForUser(ctx, orderID, userID)
}

func (s *Service) List(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

func (s *Service) ListDeliveries(ctx context.Context, userID string) ([]domain.DeliveryChoice, error) {
	return s.deliveries.ListByUser(ctx, userID)
}

// DeleteDelivery removes an order's delivery choice; the storage layer
// resets the order total back to the bare cart subtotal in the same
// transaction.
func (s *Service) DeleteDelivery(ctx context.Context, userID, choiceID string) error {
	return s.deliveries.DeleteForUser(ctx, choiceID, userID)
}
