package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/kendall-kelly/baskets-api/middleware"
)

// RegisterRoutes mounts the API on the /api/v1 group. authenticate validates
// the caller's token; staff routes additionally require a staff profile.
func RegisterRoutes(v1 *gin.RouterGroup, authenticate gin.HandlerFunc) {
	staff := middleware.RequireStaff(ResolveUser)

	// Public catalog and delivery window
	v1.GET("/deliveries", ListDeliveries)
	v1.GET("/deliveries/:id", GetDelivery)
	v1.GET("/products", ListProducts)

	protected := v1.Group("")
	protected.Use(authenticate)
	{
		protected.POST("/users", CreateUser)
		protected.GET("/users/me", GetMyProfile)
		protected.PUT("/users/me", UpdateMyProfile)

		protected.GET("/orders", ListOrders)
		protected.POST("/orders", CreateOrder)
		protected.GET("/orders/history", OrderHistory)
		protected.GET("/orders/:id", GetOrder)
		protected.PUT("/orders/:id", UpdateOrder)
		protected.DELETE("/orders/:id", DeleteOrder)

		protected.POST("/deliveries", staff, CreateDelivery)
		protected.GET("/deliveries/:id/totals", staff, GetDeliveryTotals)
		protected.GET("/deliveries/:id/export", staff, DownloadOrderForms)
		protected.POST("/deliveries/:id/export", staff, ExportOrderForms)

		protected.POST("/producers", staff, CreateProducer)
		protected.POST("/products", staff, CreateProduct)
		protected.PUT("/products/:id/price", staff, UpdateProductPrice)
	}
}
