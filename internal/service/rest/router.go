package rest

import (
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// NewRouter собирает gin-роутер модуля заказов.
func NewRouter(handler *Handler, logger *log.Entry) *gin.Engine {
	if logger == nil {
		logger = log.WithField("component", "rest-router")
	}

	router := gin.New()
	router.Use(gin.Recovery(), accessLog(logger))

	api := router.Group("/api")
	api.POST("/paymentcallback", handler.PaymentCallback)
	api.GET("/order/dashboardStatistics", handler.DashboardStatistics)

	orders := api.Group("/order/customerOrders")
	orders.POST("/search", handler.SearchOrders)
	orders.GET("/:id", handler.GetOrderByID)
	orders.GET("/number/:number", handler.GetOrderByNumber)
	orders.POST("/:id", handler.CreateOrderFromCart)
	orders.PUT("", handler.UpdateOrder)
	orders.GET("/:id/changes", handler.ListChanges)
	orders.GET("/:id/shipments/new", handler.NewShipmentDocument)
	orders.GET("/:id/payments/new", handler.NewPaymentDocument)
	orders.POST("/:id/processPayment/:paymentId", handler.ProcessPayment)

	return router
}

func accessLog(logger *log.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()

		logger.WithFields(log.Fields{
			"method":      c.Request.Method,
			"path":        c.FullPath(),
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(started).Milliseconds(),
		}).Info("http request")
	}
}
