package controllers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/tally-hq/tally-api/config"
	"github.com/tally-hq/tally-api/models"
	"github.com/tally-hq/tally-api/utils"
)

const orderTestUser = "auth0|orders"

func createTestOrder(db *gorm.DB, materialID uint, status string) *models.Order {
	order := &models.Order{
		UserID:      orderTestUser,
		MaterialID:  materialID,
		OrderNumber: utils.GenerateOrderNumber(),
		Quantity:    10,
		Status:      status,
	}
	db.Create(order)
	return order
}

func TestCreateOrder(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)

	supplier := "Herb & Co"
	material := models.Material{UserID: orderTestUser, Name: "Beeswax", Unit: "kg", Supplier: &supplier, Status: "active"}
	db.Create(&material)

	tests := []struct {
		name           string
		requestBody    map[string]interface{}
		expectedStatus int
		expectedError  string
		checkResponse  func(t *testing.T, response map[string]interface{})
	}{
		{
			name: "Successfully create order",
			requestBody: map[string]interface{}{
				"material_id": material.ID,
				"quantity":    25,
				"unit_price":  3.25,
				"supplier":    "Herb & Co",
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, response map[string]interface{}) {
				assert.True(t, response["success"].(bool))
				data := response["data"].(map[string]interface{})
				assert.Equal(t, float64(25), data["quantity"])
				assert.Equal(t, 3.25, data["unit_price"])
				assert.Equal(t, 81.25, data["total_amount"])
				assert.Equal(t, "ordered", data["status"])
				assert.Regexp(t, `^MO\d{6}[A-Z0-9]{4}$`, data["order_number"])

				// Material relationship should be preloaded
				materialData := data["material"].(map[string]interface{})
				assert.Equal(t, "Beeswax", materialData["name"])
			},
		},
		{
			name: "No total without unit price",
			requestBody: map[string]interface{}{
				"material_id": material.ID,
				"quantity":    5,
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, response map[string]interface{}) {
				data := response["data"].(map[string]interface{})
				assert.Nil(t, data["unit_price"])
				assert.Nil(t, data["total_amount"])
			},
		},
		{
			name: "Fail with missing material",
			requestBody: map[string]interface{}{
				"quantity": 25,
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
		{
			name: "Fail with zero quantity",
			requestBody: map[string]interface{}{
				"material_id": material.ID,
				"quantity":    0,
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
		{
			name: "Fail with negative quantity",
			requestBody: map[string]interface{}{
				"material_id": material.ID,
				"quantity":    -5,
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
		{
			name: "Fail with unknown material",
			requestBody: map[string]interface{}{
				"material_id": 99999,
				"quantity":    25,
			},
			expectedStatus: http.StatusNotFound,
			expectedError:  "MATERIAL_NOT_FOUND",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupTestRouter()
			router.POST("/orders",
				mockAuthMiddleware(orderTestUser, "mock-token"),
				CreateOrder,
			)

			w := performRequest(router, http.MethodPost, "/orders", tt.requestBody)
			assert.Equal(t, tt.expectedStatus, w.Code)

			response := parseResponse(t, w)
			if tt.expectedError != "" {
				assert.False(t, response["success"].(bool))
				errorData := response["error"].(map[string]interface{})
				assert.Equal(t, tt.expectedError, errorData["code"])
			}
			if tt.checkResponse != nil {
				tt.checkResponse(t, response)
			}
		})
	}
}

func TestListOrders(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)

	material := models.Material{UserID: orderTestUser, Name: "Beeswax", Unit: "kg", Status: "active"}
	db.Create(&material)

	supplier := "Herb & Co"
	first := createTestOrder(db, material.ID, models.OrderStatusOrdered)
	second := createTestOrder(db, material.ID, models.OrderStatusShipped)
	second.Supplier = &supplier
	db.Save(second)

	// Another user's order must stay invisible
	foreign := &models.Order{
		UserID:      "auth0|someone-else",
		MaterialID:  material.ID,
		OrderNumber: utils.GenerateOrderNumber(),
		Quantity:    3,
		Status:      models.OrderStatusOrdered,
	}
	db.Create(foreign)

	router := setupTestRouter()
	router.GET("/orders",
		mockAuthMiddleware(orderTestUser, "mock-token"),
		ListOrders,
	)

	t.Run("All orders newest first", func(t *testing.T) {
		w := performRequest(router, http.MethodGet, "/orders", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		response := parseResponse(t, w)
		data := response["data"].([]interface{})
		assert.Len(t, data, 2)
	})

	t.Run("Filter by status", func(t *testing.T) {
		w := performRequest(router, http.MethodGet, "/orders?status=shipped", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		response := parseResponse(t, w)
		data := response["data"].([]interface{})
		assert.Len(t, data, 1)
		orderData := data[0].(map[string]interface{})
		assert.Equal(t, second.OrderNumber, orderData["order_number"])
	})

	t.Run("Filter by supplier", func(t *testing.T) {
		w := performRequest(router, http.MethodGet, "/orders?supplier=Herb+%26+Co", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		response := parseResponse(t, w)
		data := response["data"].([]interface{})
		assert.Len(t, data, 1)
	})

	t.Run("Search by order number", func(t *testing.T) {
		w := performRequest(router, http.MethodGet, "/orders?q="+first.OrderNumber, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		response := parseResponse(t, w)
		data := response["data"].([]interface{})
		assert.Len(t, data, 1)
		orderData := data[0].(map[string]interface{})
		assert.Equal(t, first.OrderNumber, orderData["order_number"])
	})
}

func TestGetOrder(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)

	material := models.Material{UserID: orderTestUser, Name: "Beeswax", Unit: "kg", Status: "active"}
	db.Create(&material)
	order := createTestOrder(db, material.ID, models.OrderStatusOrdered)

	router := setupTestRouter()
	router.GET("/orders/:id",
		mockAuthMiddleware(orderTestUser, "mock-token"),
		GetOrder,
	)

	t.Run("Get own order", func(t *testing.T) {
		w := performRequest(router, http.MethodGet, fmt.Sprintf("/orders/%d", order.ID), nil)
		assert.Equal(t, http.StatusOK, w.Code)

		response := parseResponse(t, w)
		data := response["data"].(map[string]interface{})
		assert.Equal(t, order.OrderNumber, data["order_number"])

		materialData := data["material"].(map[string]interface{})
		assert.Equal(t, "Beeswax", materialData["name"])
	})

	t.Run("Order not found", func(t *testing.T) {
		w := performRequest(router, http.MethodGet, "/orders/99999", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		response := parseResponse(t, w)
		errorData := response["error"].(map[string]interface{})
		assert.Equal(t, "ORDER_NOT_FOUND", errorData["code"])
	})

	t.Run("Other user's order is invisible", func(t *testing.T) {
		otherRouter := setupTestRouter()
		otherRouter.GET("/orders/:id",
			mockAuthMiddleware("auth0|intruder", "mock-token"),
			GetOrder,
		)

		w := performRequest(otherRouter, http.MethodGet, fmt.Sprintf("/orders/%d", order.ID), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestUpdateOrder(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)

	material := models.Material{UserID: orderTestUser, Name: "Beeswax", Unit: "kg", Status: "active"}
	db.Create(&material)

	t.Run("Update quantity recomputes total", func(t *testing.T) {
		order := createTestOrder(db, material.ID, models.OrderStatusOrdered)
		unitPrice := 2.0
		order.UnitPrice = &unitPrice
		db.Save(order)

		router := setupTestRouter()
		router.PUT("/orders/:id",
			mockAuthMiddleware(orderTestUser, "mock-token"),
			UpdateOrder,
		)

		w := performRequest(router, http.MethodPut, fmt.Sprintf("/orders/%d", order.ID), map[string]interface{}{
			"quantity": 7,
		})
		assert.Equal(t, http.StatusOK, w.Code)

		response := parseResponse(t, w)
		data := response["data"].(map[string]interface{})
		assert.Equal(t, float64(7), data["quantity"])
		assert.Equal(t, float64(14), data["total_amount"])
	})

	t.Run("Mark order delivered", func(t *testing.T) {
		order := createTestOrder(db, material.ID, models.OrderStatusProcessing)

		router := setupTestRouter()
		router.PUT("/orders/:id",
			mockAuthMiddleware(orderTestUser, "mock-token"),
			UpdateOrder,
		)

		w := performRequest(router, http.MethodPut, fmt.Sprintf("/orders/%d", order.ID), map[string]interface{}{
			"status":               "delivered",
			"actual_delivery_date": "2026-08-28T10:00:00Z",
		})
		assert.Equal(t, http.StatusOK, w.Code)

		response := parseResponse(t, w)
		data := response["data"].(map[string]interface{})
		assert.Equal(t, "delivered", data["status"])
		assert.NotNil(t, data["actual_delivery_date"])
	})

	for _, status := range []string{models.OrderStatusShipped, models.OrderStatusDelivered, models.OrderStatusCancelled} {
		t.Run("Cannot edit "+status+" order", func(t *testing.T) {
			order := createTestOrder(db, material.ID, status)

			router := setupTestRouter()
			router.PUT("/orders/:id",
				mockAuthMiddleware(orderTestUser, "mock-token"),
				UpdateOrder,
			)

			w := performRequest(router, http.MethodPut, fmt.Sprintf("/orders/%d", order.ID), map[string]interface{}{
				"quantity": 99,
			})
			assert.Equal(t, http.StatusConflict, w.Code)

			response := parseResponse(t, w)
			errorData := response["error"].(map[string]interface{})
			assert.Equal(t, "INVALID_STATUS", errorData["code"])

			var reloaded models.Order
			db.First(&reloaded, order.ID)
			assert.Equal(t, 10, reloaded.Quantity, "locked order must be unchanged")
		})
	}

	t.Run("Fail with unknown status value", func(t *testing.T) {
		order := createTestOrder(db, material.ID, models.OrderStatusOrdered)

		router := setupTestRouter()
		router.PUT("/orders/:id",
			mockAuthMiddleware(orderTestUser, "mock-token"),
			UpdateOrder,
		)

		w := performRequest(router, http.MethodPut, fmt.Sprintf("/orders/%d", order.ID), map[string]interface{}{
			"status": "lost",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		response := parseResponse(t, w)
		errorData := response["error"].(map[string]interface{})
		assert.Equal(t, "VALIDATION_ERROR", errorData["code"])
	})
}

func TestCancelOrder(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)

	material := models.Material{UserID: orderTestUser, Name: "Beeswax", Unit: "kg", Status: "active"}
	db.Create(&material)

	router := setupTestRouter()
	router.POST("/orders/:id/cancel",
		mockAuthMiddleware(orderTestUser, "mock-token"),
		CancelOrder,
	)

	for _, status := range []string{models.OrderStatusOrdered, models.OrderStatusProcessing, models.OrderStatusShipped} {
		t.Run("Cancel "+status+" order", func(t *testing.T) {
			order := createTestOrder(db, material.ID, status)

			w := performRequest(router, http.MethodPost, fmt.Sprintf("/orders/%d/cancel", order.ID), nil)
			assert.Equal(t, http.StatusOK, w.Code)

			response := parseResponse(t, w)
			data := response["data"].(map[string]interface{})
			assert.Equal(t, "cancelled", data["status"])
		})
	}

	for _, status := range []string{models.OrderStatusDelivered, models.OrderStatusCancelled} {
		t.Run("Cannot cancel "+status+" order", func(t *testing.T) {
			order := createTestOrder(db, material.ID, status)

			w := performRequest(router, http.MethodPost, fmt.Sprintf("/orders/%d/cancel", order.ID), nil)
			assert.Equal(t, http.StatusConflict, w.Code)

			response := parseResponse(t, w)
			errorData := response["error"].(map[string]interface{})
			assert.Equal(t, "INVALID_STATUS", errorData["code"])
		})
	}

	t.Run("Order not found", func(t *testing.T) {
		w := performRequest(router, http.MethodPost, "/orders/99999/cancel", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
