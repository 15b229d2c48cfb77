package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kendall-kelly/baskets-api/services"
)

// CreateOrderRequest represents the request body for creating an order
type CreateOrderRequest struct {
	DeliveryID uint                 `json:"delivery_id"`
	Items      []services.ItemInput `json:"items"`
	Message    string               `json:"message"`
}

// UpdateOrderRequest represents the request body for updating an order.
// Absent fields are left unchanged.
type UpdateOrderRequest struct {
	Items   *[]services.ItemInput `json:"items"`
	Message *string               `json:"message"`
}

// ListOrders handles GET /api/v1/orders - the caller's orders
func ListOrders(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	orders, err := services.GetOrderService().ListOrders(c.Request.Context(), user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// OrderHistory handles GET /api/v1/orders/history - the caller's orders for closed deliveries
func OrderHistory(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	history, err := services.GetOrderService().OrderHistory(c.Request.Context(), user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    history,
	})
}

// CreateOrder handles POST /api/v1/orders
func CreateOrder(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	if user == nil {
		respondUnauthorized(c)
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	result, err := services.GetOrderService().CreateOrder(c.Request.Context(), user, services.CreateOrderInput{
		DeliveryID: req.DeliveryID,
		Items:      req.Items,
		Message:    req.Message,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Location", result.URL)
	c.JSON(http.StatusCreated, gin.H{
		"message": "Order has been successfully created",
		"url":     result.URL,
		"amount":  result.Amount,
	})
}

// GetOrder handles GET /api/v1/orders/:id
func GetOrder(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	if user == nil {
		respondUnauthorized(c)
		return
	}
	id, ok := pathID(c, "ORDER_NOT_FOUND")
	if !ok {
		return
	}

	order, err := services.GetOrderService().GetOrder(c.Request.Context(), user, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// UpdateOrder handles PUT /api/v1/orders/:id
func UpdateOrder(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	if user == nil {
		respondUnauthorized(c)
		return
	}
	id, ok := pathID(c, "ORDER_NOT_FOUND")
	if !ok {
		return
	}

	var req UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	result, err := services.GetOrderService().UpdateOrder(c.Request.Context(), user, id, services.UpdateOrderInput{
		Items:   req.Items,
		Message: req.Message,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order has been successfully updated",
		"amount":  result.Amount,
	})
}

// DeleteOrder handles DELETE /api/v1/orders/:id
func DeleteOrder(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	if user == nil {
		respondUnauthorized(c)
		return
	}
	id, ok := pathID(c, "ORDER_NOT_FOUND")
	if !ok {
		return
	}

	if err := services.GetOrderService().DeleteOrder(c.Request.Context(), user, id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order has been successfully deleted",
	})
}
