package httpserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"nature-animaux/internal/domain"
	cartsvc "nature-animaux/internal/service/cart"
	usersvc "nature-animaux/internal/service/user"
)

// writeError maps the domain error taxonomy onto HTTP statuses. Anything
// not in the taxonomy is an internal error and stays opaque to the client.
func writeError(c *gin.Context, err error) {
	var vErr *domain.ValidationError
	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": vErr.Message, "field": vErr.Field})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, domain.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "conflict"})
	case errors.Is(err, domain.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "upstream unavailable"})
	case errors.Is(err, usersvc.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

type cartItemResponse struct {
	ID         string `json:"id"`
	ProductID  string `json:"product_id"`
	VariantID  string `json:"variant_id"`
	Title      string `json:"product_title,omitempty"`
	UnitPrice  string `json:"unit_price"`
	Quantity   int    `json:"quantity"`
	TotalPrice string `json:"total_price"`
	Weight     string `json:"weight"`
	ImageURL   string `json:"image_url,omitempty"`
}

type deliveryChoiceResponse struct {
	ID    string `json:"id"`
	Mode  string `json:"mode"`
	Label string `json:"label"`
	Fee   string `json:"fee"`
}

type cartResponse struct {
	ID          string                  `json:"id"`
	Items       []cartItemResponse      `json:"items"`
	Subtotal    string                  `json:"subtotal"`
	TotalWeight string                  `json:"total_weight"`
	Delivery    *deliveryChoiceResponse `json:"delivery,omitempty"`
}

type deliveryOptionResponse struct {
	Mode  string `json:"mode"`
	Label string `json:"label"`
	Fee   string `json:"fee"`
}

type estimateResponse struct {
	Subtotal    string                   `json:"subtotal"`
	TotalWeight string                   `json:"total_weight"`
	Items       []cartItemResponse       `json:"items"`
	Options     []deliveryOptionResponse `json:"options"`
}

type orderResponse struct {
	OrderID    string                  `json:"order_id"`
	CartID     string                  `json:"cart_id"`
	TotalPrice string                  `json:"total_price"`
	CreatedAt  time.Time               `json:"created_at"`
	UpdatedAt  time.Time               `json:"updated_at"`
	Delivery   *deliveryChoiceResponse `json:"delivery_choice,omitempty"`
}

func toItemResponses(items []cartsvc.ItemView) []cartItemResponse {
	out := make([]cartItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, cartItemResponse{
			ID:         item.ID,
			ProductID:  item.ProductID,
			VariantID:  item.VariantID,
			Title:      item.Title,
			UnitPrice:  item.UnitPrice.StringFixed(2),
			Quantity:   item.Quantity,
			TotalPrice: item.TotalPrice.StringFixed(2),
			Weight:     item.ResolvedWeight.StringFixed(2),
			ImageURL:   item.ImageURL,
		})
	}
	return out
}

func toCartResponse(s *cartsvc.Summary) cartResponse {
	return cartResponse{
		ID:          s.Cart.ID,
		Items:       toItemResponses(s.Items),
		Subtotal:    s.Subtotal.StringFixed(2),
		TotalWeight: s.TotalWeight.StringFixed(2),
		Delivery:    toChoiceResponse(s.Delivery),
	}
}

func toChoiceResponse(choice *domain.DeliveryChoice) *deliveryChoiceResponse {
	if choice == nil {
		return nil
	}
	return &deliveryChoiceResponse{
		ID:    choice.ID,
		Mode:  string(choice.Mode),
		Label: choice.Mode.Label(),
		Fee:   choice.Fee.StringFixed(2),
	}
}

func toOrderResponse(o *domain.Order) orderResponse {
	return orderResponse{
		OrderID:    o.ID,
		CartID:     o.CartID,
		TotalPrice: o.TotalPrice.StringFixed(2),
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
		Delivery:   toChoiceResponse(o.Delivery),
	}
}
