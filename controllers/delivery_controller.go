package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kendall-kelly/baskets-api/services"
	"github.com/kendall-kelly/baskets-api/utils"
)

// CreateDeliveryRequest represents the request body for scheduling a delivery.
// Dates are YYYY-MM-DD; order_deadline defaults to four days before date.
type CreateDeliveryRequest struct {
	Date          string `json:"date" binding:"required"`
	OrderDeadline string `json:"order_deadline"`
	ProductIDs    []uint `json:"product_ids"`
	Message       string `json:"message" binding:"max=128"`
}

func (r CreateDeliveryRequest) input() (services.CreateDeliveryInput, error) {
	date, err := utils.ParseDate(r.Date)
	if err != nil {
		return services.CreateDeliveryInput{}, err
	}
	in := services.CreateDeliveryInput{Date: date, ProductIDs: r.ProductIDs, Message: r.Message}
	if r.OrderDeadline != "" {
		deadline, err := utils.ParseDate(r.OrderDeadline)
		if err != nil {
			return services.CreateDeliveryInput{}, err
		}
		in.OrderDeadline = &deadline
	}
	return in, nil
}

// ListDeliveries handles GET /api/v1/deliveries - deliveries still accepting orders
func ListDeliveries(c *gin.Context) {
	deliveries, err := services.GetDeliveryService().ListOpenDeliveries(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, deliveries)
}

// GetDelivery handles GET /api/v1/deliveries/:id
func GetDelivery(c *gin.Context) {
	id, ok := pathID(c, "DELIVERY_NOT_FOUND")
	if !ok {
		return
	}

	delivery, err := services.GetDeliveryService().GetDelivery(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, delivery)
}

// CreateDelivery handles POST /api/v1/deliveries (staff)
func CreateDelivery(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req CreateDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}
	input, err := req.input()
	if err != nil {
		respondValidationError(c, err)
		return
	}

	delivery, err := services.GetDeliveryService().CreateDelivery(c.Request.Context(), user, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    delivery,
	})
}

// GetDeliveryTotals handles GET /api/v1/deliveries/:id/totals (staff)
func GetDeliveryTotals(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "DELIVERY_NOT_FOUND")
	if !ok {
		return
	}

	totals, err := services.GetDeliveryService().ProductTotals(c.Request.Context(), user, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    totals,
	})
}

// DownloadOrderForms handles GET /api/v1/deliveries/:id/export (staff)
func DownloadOrderForms(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "DELIVERY_NOT_FOUND")
	if !ok {
		return
	}

	forms, err := services.GetExportService().BuildOrderForms(c.Request.Context(), user, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, forms.Filename))
	c.Header("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
	c.Data(http.StatusOK, services.ExportContentType, forms.Content)
}

// ExportOrderForms handles POST /api/v1/deliveries/:id/export (staff) - uploads the forms to S3
func ExportOrderForms(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "DELIVERY_NOT_FOUND")
	if !ok {
		return
	}

	result, err := services.GetExportService().ExportOrderForms(c.Request.Context(), user, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    result,
	})
}
