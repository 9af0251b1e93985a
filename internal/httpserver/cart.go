package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"nature-animaux/internal/domain"
	cartsvc "nature-animaux/internal/service/cart"
)

func getCartHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		summary, err := deps.CartSvc.Summary(c.Request.Context(), ownerFromContext(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, toCartResponse(summary))
	}
}

func addItemHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in cartsvc.AddItemInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		item, err := deps.CartSvc.AddItem(c.Request.Context(), ownerFromContext(c), in)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"id":          item.ID,
			"quantity":    item.Quantity,
			"total_price": item.TotalPrice().StringFixed(2),
			"weight":      item.TotalWeight().StringFixed(2),
		})
	}
}

type setQuantityRequest struct {
	Quantity *int `json:"quantity"`
}

func setQuantityHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req setQuantityRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Quantity == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "quantity required"})
			return
		}
		item, err := deps.CartSvc.SetQuantity(c.Request.Context(), ownerFromContext(c), c.Param("id"), *req.Quantity)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"id":          item.ID,
			"quantity":    item.Quantity,
			"total_price": item.TotalPrice().StringFixed(2),
		})
	}
}

func removeItemHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := deps.CartSvc.RemoveItem(c.Request.Context(), ownerFromContext(c), c.Param("id")); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

type selectDeliveryRequest struct {
	Mode string          `json:"mode" binding:"required"`
	Fee  decimal.Decimal `json:"fee"`
}

func selectCartDeliveryHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req selectDeliveryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "mode and fee required"})
			return
		}
		owner := ownerFromContext(c)
		if _, err := deps.CartSvc.SelectDelivery(c.Request.Context(), owner, domain.DeliveryMode(req.Mode), req.Fee); err != nil {
			writeError(c, err)
			return
		}
		summary, err := deps.CartSvc.Summary(c.Request.Context(), owner)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, toCartResponse(summary))
	}
}

func deliveryOptionsHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		estimate, err := deps.CartSvc.Estimate(c.Request.Context(), ownerFromContext(c))
		if err != nil {
			writeError(c, err)
			return
		}
		options := make([]deliveryOptionResponse, 0, len(estimate.Options))
		for _, opt := range estimate.Options {
			options = append(options, deliveryOptionResponse{
				Mode:  string(opt.Mode),
				Label: opt.Label,
				Fee:   opt.Fee.StringFixed(2),
			})
		}
		c.JSON(http.StatusOK, estimateResponse{
			Subtotal:    estimate.Subtotal.StringFixed(2),
			TotalWeight: estimate.QuotedWeight.StringFixed(2),
			Items:       toItemResponses(estimate.Items),
			Options:     options,
		})
	}
}
