package controllers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kendall-kelly/baskets-api/models"
	"github.com/kendall-kelly/baskets-api/services"
	"github.com/kendall-kelly/baskets-api/tests/testutil"
)

func TestListProducts_Public(t *testing.T) {
	env := setupTestRouter(t)

	w := env.request(http.MethodGet, "/api/v1/products", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data []services.CatalogProduct `json:"data"`
	}
	decode(t, w, &body)
	require.Len(t, body.Data, 3)
	assert.Equal(t, "Apples", body.Data[0].Name)
	assert.Equal(t, "Ferme du Val", body.Data[0].ProducerName)
	assert.Equal(t, "0.50", body.Data[0].UnitPrice)
}

func TestCreateProducer(t *testing.T) {
	env := setupTestRouter(t)
	staff := env.f.Staff.Auth0ID

	tests := []struct {
		name       string
		body       gin.H
		wantStatus int
	}{
		{"national phone", gin.H{"name": "Miellerie", "phone": "06 12 34 56 78"}, http.StatusCreated},
		{"international phone", gin.H{"name": "Fromagerie", "phone": "+33 4 12 34 56 78"}, http.StatusCreated},
		{"no phone", gin.H{"name": "Boulangerie", "email": "pain@example.com"}, http.StatusCreated},
		{"foreign phone", gin.H{"name": "Brewery", "phone": "+1 555 123 4567"}, http.StatusBadRequest},
		{"bad email", gin.H{"name": "Brewery", "email": "not-an-email"}, http.StatusBadRequest},
		{"missing name", gin.H{"phone": "0612345678"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.request(http.MethodPost, "/api/v1/producers", staff, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantStatus == http.StatusBadRequest {
				assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w))
			}
		})
	}

	w := env.request(http.MethodPost, "/api/v1/producers", env.f.Member.Auth0ID, gin.H{"name": "Sneaky"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCreateProduct(t *testing.T) {
	env := setupTestRouter(t)
	f := env.f

	w := env.request(http.MethodPost, "/api/v1/products", f.Staff.Auth0ID, gin.H{
		"producer_id": f.Producer.ID,
		"name":        "Honey",
		"unit_price":  "7.5",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var body struct {
		Data services.CatalogProduct `json:"data"`
	}
	decode(t, w, &body)
	assert.Equal(t, "Honey", body.Data.Name)
	assert.Equal(t, "7.50", body.Data.UnitPrice)
	assert.Equal(t, "Ferme du Val", body.Data.ProducerName)

	w = env.request(http.MethodPost, "/api/v1/products", f.Staff.Auth0ID, gin.H{
		"producer_id": 999,
		"name":        "Ghost",
		"unit_price":  "1.00",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "PRODUCER_NOT_FOUND", errorCode(t, w))

	w = env.request(http.MethodPost, "/api/v1/products", f.Staff.Auth0ID, gin.H{
		"producer_id": f.Producer.ID,
		"name":        "Honey",
		"unit_price":  "cheap",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w))
}

func TestUpdateProductPrice_KeepsOrderAmounts(t *testing.T) {
	env := setupTestRouter(t)
	f := env.f
	order := testutil.SeedOrder(t, env.db, f.Member, f.Open, testutil.Line{Product: f.Eggs, Quantity: 2})

	w := env.request(http.MethodPut, fmt.Sprintf("/api/v1/products/%d/price", f.Eggs.ID), f.Staff.Auth0ID,
		gin.H{"unit_price": "1.40"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Data services.ProductDetail `json:"data"`
	}
	decode(t, w, &body)
	assert.Equal(t, "1.40", body.Data.UnitPrice)

	var stored models.Order
	require.NoError(t, env.db.First(&stored, order.ID).Error)
	assert.Equal(t, "2.30", stored.Amount.StringFixed(2))

	w = env.request(http.MethodPut, fmt.Sprintf("/api/v1/products/%d/price", f.Eggs.ID), f.Staff.Auth0ID,
		gin.H{"unit_price": "-1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_PRICE", errorCode(t, w))

	w = env.request(http.MethodPut, "/api/v1/products/999/price", f.Staff.Auth0ID, gin.H{"unit_price": "1.00"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "PRODUCT_NOT_FOUND", errorCode(t, w))
}
