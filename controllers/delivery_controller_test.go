package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kendall-kelly/baskets-api/services"
	"github.com/kendall-kelly/baskets-api/tests/testutil"
)

func TestListDeliveries_Public(t *testing.T) {
	env := setupTestRouter(t)

	w := env.request(http.MethodGet, "/api/v1/deliveries", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, fmt.Sprintf(`[{"id":%d,"date":"2024-03-15"},{"id":%d,"date":"2024-03-22"}]`,
		env.f.Open.ID, env.f.Future.ID), w.Body.String())
}

func TestGetDelivery(t *testing.T) {
	env := setupTestRouter(t)

	w := env.request(http.MethodGet, fmt.Sprintf("/api/v1/deliveries/%d", env.f.Open.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var detail services.DeliveryDetail
	decode(t, w, &detail)
	assert.Equal(t, "2024-03-15", detail.Date)
	assert.Equal(t, "2024-03-14", detail.OrderDeadline)
	assert.True(t, detail.IsOpen)
	assert.Equal(t, "Bring your own bags", detail.Message)
	require.Len(t, detail.Products, 2)
	assert.Equal(t, "Apples", detail.Products[0].Name)
	assert.Equal(t, "1.15", detail.Products[1].UnitPrice)

	w = env.request(http.MethodGet, fmt.Sprintf("/api/v1/deliveries/%d", env.f.Closed.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &detail)
	assert.False(t, detail.IsOpen)
}

func TestGetDelivery_NotFound(t *testing.T) {
	env := setupTestRouter(t)

	for _, path := range []string{"/api/v1/deliveries/999", "/api/v1/deliveries/next"} {
		w := env.request(http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		assert.Equal(t, "DELIVERY_NOT_FOUND", errorCode(t, w))
	}
}

func TestCreateDelivery(t *testing.T) {
	env := setupTestRouter(t)
	f := env.f

	w := env.request(http.MethodPost, "/api/v1/deliveries", f.Staff.Auth0ID, gin.H{
		"date":        "2024-03-29",
		"product_ids": []uint{f.Eggs.ID, f.Bread.ID},
		"message":     "Easter basket",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var body struct {
		Success bool                    `json:"success"`
		Data    services.DeliveryDetail `json:"data"`
	}
	decode(t, w, &body)
	assert.True(t, body.Success)
	assert.NotZero(t, body.Data.ID)
	assert.Equal(t, "2024-03-29", body.Data.Date)
	assert.Equal(t, "2024-03-25", body.Data.OrderDeadline)
	assert.True(t, body.Data.IsOpen)
	assert.Len(t, body.Data.Products, 2)

	w = env.request(http.MethodGet, "/api/v1/deliveries", "", nil)
	var open []services.DeliverySummary
	decode(t, w, &open)
	assert.Len(t, open, 3)
}

func TestCreateDelivery_Rejected(t *testing.T) {
	env := setupTestRouter(t)
	f := env.f

	tests := []struct {
		name       string
		auth0ID    string
		body       gin.H
		wantStatus int
		wantCode   string
	}{
		{
			name:       "anonymous",
			auth0ID:    "",
			body:       gin.H{"date": "2024-04-05"},
			wantStatus: http.StatusUnauthorized,
			wantCode:   "INVALID_TOKEN",
		},
		{
			name:       "no profile",
			auth0ID:    "auth0|stranger",
			body:       gin.H{"date": "2024-04-05"},
			wantStatus: http.StatusUnauthorized,
			wantCode:   "UNAUTHORIZED",
		},
		{
			name:       "member",
			auth0ID:    f.Member.Auth0ID,
			body:       gin.H{"date": "2024-04-05"},
			wantStatus: http.StatusForbidden,
			wantCode:   "FORBIDDEN",
		},
		{
			name:       "missing date",
			auth0ID:    f.Staff.Auth0ID,
			body:       gin.H{"product_ids": []uint{f.Apples.ID}},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name:       "malformed date",
			auth0ID:    f.Staff.Auth0ID,
			body:       gin.H{"date": "05/04/2024"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name:       "deadline after date",
			auth0ID:    f.Staff.Auth0ID,
			body:       gin.H{"date": "2024-04-05", "order_deadline": "2024-04-06"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name:       "unknown product",
			auth0ID:    f.Staff.Auth0ID,
			body:       gin.H{"date": "2024-04-05", "product_ids": []uint{999}},
			wantStatus: http.StatusNotFound,
			wantCode:   "PRODUCT_NOT_FOUND",
		},
		{
			name:       "deadline already used",
			auth0ID:    f.Staff.Auth0ID,
			body:       gin.H{"date": "2024-03-20", "order_deadline": "2024-03-18"},
			wantStatus: http.StatusConflict,
			wantCode:   "DELIVERY_DEADLINE_TAKEN",
		},
		{
			name:       "message too long",
			auth0ID:    f.Staff.Auth0ID,
			body:       gin.H{"date": "2024-04-05", "message": strings.Repeat("x", 129)},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.request(http.MethodPost, "/api/v1/deliveries", tt.auth0ID, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			assert.Equal(t, tt.wantCode, errorCode(t, w))
		})
	}
}

func TestGetDeliveryTotals(t *testing.T) {
	env := setupTestRouter(t)
	f := env.f
	testutil.SeedOrder(t, env.db, f.Member, f.Closed, testutil.Line{Product: f.Bread, Quantity: 3})
	testutil.SeedOrder(t, env.db, f.Other, f.Closed,
		testutil.Line{Product: f.Apples, Quantity: 2},
		testutil.Line{Product: f.Bread, Quantity: 1})

	path := fmt.Sprintf("/api/v1/deliveries/%d/totals", f.Closed.ID)

	w := env.request(http.MethodGet, path, f.Member.Auth0ID, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.request(http.MethodGet, path, f.Staff.Auth0ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data []services.ProductTotal `json:"data"`
	}
	decode(t, w, &body)
	require.Len(t, body.Data, 3)

	got := map[string]int64{}
	for _, total := range body.Data {
		got[total.ProductName] = total.TotalQuantity
	}
	assert.Equal(t, map[string]int64{"Apples": 2, "Bread": 4, "Eggs": 0}, got)
}

func TestDownloadOrderForms(t *testing.T) {
	env := setupTestRouter(t)
	f := env.f
	testutil.SeedOrder(t, env.db, f.Other, f.Closed, testutil.Line{Product: f.Apples, Quantity: 2})
	testutil.SeedOrder(t, env.db, f.Member, f.Closed, testutil.Line{Product: f.Bread, Quantity: 3})

	w := env.request(http.MethodGet, fmt.Sprintf("/api/v1/deliveries/%d/export", f.Closed.ID), f.Staff.Auth0ID, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, services.ExportContentType, w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="2024-03-14_order_forms.xlsx"`, w.Header().Get("Content-Disposition"))

	wb := testutil.ReadWorkbook(t, w.Body.Bytes())
	assert.Equal(t, []string{"alice", "bob"}, wb.Sheets)
	assert.Contains(t, wb.Rows["alice"], []string{"User", "alice"})
	assert.Contains(t, wb.Rows["alice"], []string{"Bread", "2.00", "3", "6.00"})
	assert.Contains(t, wb.Rows["bob"], []string{"Apples", "0.50", "2", "1.00"})
	assert.Equal(t, []string{"", "", "total", "1.00"}, wb.LastRow("bob"))
}

func TestExportOrderForms(t *testing.T) {
	env := setupTestRouter(t)
	f := env.f
	testutil.SeedOrder(t, env.db, f.Member, f.Closed, testutil.Line{Product: f.Bread, Quantity: 3})

	w := env.request(http.MethodPost, fmt.Sprintf("/api/v1/deliveries/%d/export", f.Closed.ID), f.Staff.Auth0ID, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var body struct {
		Success bool                  `json:"success"`
		Data    services.ExportResult `json:"data"`
	}
	decode(t, w, &body)
	assert.True(t, body.Success)
	assert.Equal(t, 1, body.Data.Orders)
	assert.True(t, strings.HasPrefix(body.Data.Key, "exports/2024-03-14_order_forms_"))
	assert.Contains(t, body.Data.URL, body.Data.Key)

	content, contentType, ok := env.storage.Object(body.Data.Key)
	require.True(t, ok)
	assert.Equal(t, services.ExportContentType, contentType)
	wb := testutil.ReadWorkbook(t, content)
	assert.Equal(t, []string{"alice"}, wb.Sheets)
	assert.Equal(t, []string{"", "", "total", "6.00"}, wb.LastRow("alice"))
}

func TestExportOrderForms_NotReady(t *testing.T) {
	env := setupTestRouter(t)
	f := env.f

	// Open and Future still accept orders, Closed has none
	for _, id := range []uint{f.Open.ID, f.Future.ID, f.Closed.ID} {
		w := env.request(http.MethodPost, fmt.Sprintf("/api/v1/deliveries/%d/export", id), f.Staff.Auth0ID, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "EXPORT_NOT_READY", errorCode(t, w))
	}
	assert.Empty(t, env.storage.Keys())
}
