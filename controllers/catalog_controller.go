package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kendall-kelly/baskets-api/services"
	"github.com/kendall-kelly/baskets-api/utils"
)

type CreateProducerRequest struct {
	Name  string `json:"name" binding:"required,max=64"`
	Phone string `json:"phone" binding:"omitempty,frphone"`
	Email string `json:"email" binding:"omitempty,email"`
}

type CreateProductRequest struct {
	ProducerID uint   `json:"producer_id" binding:"required"`
	Name       string `json:"name" binding:"required,max=64"`
	UnitPrice  string `json:"unit_price" binding:"required"`
}

type UpdatePriceRequest struct {
	UnitPrice string `json:"unit_price" binding:"required"`
}

// ListProducts handles GET /api/v1/products
func ListProducts(c *gin.Context) {
	products, err := services.GetCatalogService().ListProducts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    products,
	})
}

// CreateProducer handles POST /api/v1/producers (staff)
func CreateProducer(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req CreateProducerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	producer, err := services.GetCatalogService().CreateProducer(c.Request.Context(), user, services.CreateProducerInput{
		Name:  req.Name,
		Phone: req.Phone,
		Email: req.Email,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    producer,
	})
}

// CreateProduct handles POST /api/v1/products (staff)
func CreateProduct(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}
	price, err := utils.ParseAmount(req.UnitPrice)
	if err != nil {
		respondValidationError(c, err)
		return
	}

	product, err := services.GetCatalogService().CreateProduct(c.Request.Context(), user, services.CreateProductInput{
		ProducerID: req.ProducerID,
		Name:       req.Name,
		UnitPrice:  price,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    product,
	})
}

// UpdateProductPrice handles PUT /api/v1/products/:id/price (staff)
func UpdateProductPrice(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "PRODUCT_NOT_FOUND")
	if !ok {
		return
	}

	var req UpdatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}
	price, err := utils.ParseAmount(req.UnitPrice)
	if err != nil {
		respondValidationError(c, err)
		return
	}

	product, err := services.GetCatalogService().UpdateProductPrice(c.Request.Context(), user, id, price)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    product,
	})
}
