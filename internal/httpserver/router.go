package httpserver

import (
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization", sessionHeader)
	corsCfg.ExposeHeaders = append(corsCfg.ExposeHeaders, sessionHeader)
	router.Use(cors.New(corsCfg))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	api := router.Group("/api")
	api.GET("/products/:id", getProductHandler(deps))
	api.POST("/auth/register", registerHandler(deps))
	api.POST("/auth/login", loginHandler(deps))

	identified := api.Group("", identityMiddleware(deps))
	identified.GET("/cart", getCartHandler(deps))
	identified.POST("/cart/items", addItemHandler(deps))
	identified.PATCH("/cart/items/:id", setQuantityHandler(deps))
	identified.DELETE("/cart/items/:id", removeItemHandler(deps))
	identified.POST("/cart/delivery", selectCartDeliveryHandler(deps))
	identified.GET("/delivery/options", deliveryOptionsHandler(deps))

	authed := identified.Group("", requireUser())
	authed.POST("/orders", createOrderHandler(deps))
	authed.GET("/orders", listOrdersHandler(deps))
	authed.GET("/orders/:id", getOrderHandler(deps))
	authed.POST("/orders/:id/delivery", applyOrderDeliveryHandler(deps))
	authed.GET("/deliveries", listDeliveriesHandler(deps))
	authed.DELETE("/deliveries/:id", deleteDeliveryHandler(deps))

	return router
}
