package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"nature-animaux/internal/domain"
)

type createOrderRequest struct {
	CartID string `json:"cart_id"`
}

func createOrderHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		order, err := deps.OrderSvc.Create(c.Request.Context(), userFromContext(c).ID, req.CartID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, toOrderResponse(order))
	}
}

func listOrdersHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		orders, err := deps.OrderSvc.List(c.Request.Context(), userFromContext(c).ID)
		if err != nil {
			writeError(c, err)
			return
		}
		out := make([]orderResponse, 0, len(orders))
		for i := range orders {
			out = append(out, toOrderResponse(&orders[i]))
		}
		c.JSON(http.StatusOK, gin.H{"orders": out})
	}
}

func getOrderHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, err := deps.OrderSvc.Get(c.Request.Context(), userFromContext(c).ID, c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, toOrderResponse(order))
	}
}

func applyOrderDeliveryHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req selectDeliveryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "mode and fee required"})
			return
		}
		order, err := deps.OrderSvc.ApplyDelivery(
			c.Request.Context(),
			userFromContext(c).ID,
			c.Param("id"),
			domain.DeliveryMode(req.Mode),
			req.Fee,
		)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, toOrderResponse(order))
	}
}

func listDeliveriesHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		choices, err := deps.OrderSvc.ListDeliveries(c.Request.Context(), userFromContext(c).ID)
		if err != nil {
			writeError(c, err)
			return
		}
		out := make([]deliveryChoiceResponse, 0, len(choices))
		for i := range choices {
			out = append(out, *toChoiceResponse(&choices[i]))
		}
		c.JSON(http.StatusOK, gin.H{"deliveries": out})
	}
}

func deleteDeliveryHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := deps.OrderSvc.DeleteDelivery(c.Request.Context(), userFromContext(c).ID, c.Param("id")); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
