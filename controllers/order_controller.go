package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/tally-hq/tally-api/config"
	"github.com/tally-hq/tally-api/middleware"
	"github.com/tally-hq/tally-api/models"
	"github.com/tally-hq/tally-api/utils"
)

// CreateOrderRequest represents the request body for creating a supplier order
type CreateOrderRequest struct {
	MaterialID           uint       `json:"material_id" binding:"required"`
	Quantity             int        `json:"quantity" binding:"required,gt=0"`
	UnitPrice            *float64   `json:"unit_price" binding:"omitempty,gte=0"`
	Supplier             *string    `json:"supplier"`
	SupplierOrderID      *string    `json:"supplier_order_id"`
	ExpectedDeliveryDate *time.Time `json:"expected_delivery_date"`
	Notes                *string    `json:"notes"`
}

// UpdateOrderRequest represents the request body for editing an order
type UpdateOrderRequest struct {
	Quantity             *int       `json:"quantity" binding:"omitempty,gt=0"`
	UnitPrice            *float64   `json:"unit_price" binding:"omitempty,gte=0"`
	Supplier             *string    `json:"supplier"`
	SupplierOrderID      *string    `json:"supplier_order_id"`
	ExpectedDeliveryDate *time.Time `json:"expected_delivery_date"`
	ActualDeliveryDate   *time.Time `json:"actual_delivery_date"`
	Status               *string    `json:"status" binding:"omitempty,oneof=ordered processing shipped delivered cancelled"`
	Notes                *string    `json:"notes"`
}

// ListOrders handles GET /api/v1/orders
// Supports ?status=, ?supplier= and ?q= filters, newest first
func ListOrders(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondUnauthorized(c)
		return
	}

	db := config.GetDB()
	query := db.Preload("Material").Where("user_id = ?", userID).Order("created_at DESC")

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if supplier := c.Query("supplier"); supplier != "" {
		query = query.Where("supplier = ?", supplier)
	}
	if q := c.Query("q"); q != "" {
		like := "%" + q + "%"
		query = query.Where("order_number LIKE ? OR supplier LIKE ? OR notes LIKE ?", like, like, like)
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load orders",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orders,
	})
}

// CreateOrder handles POST /api/v1/orders - creates a supplier order for a material
func CreateOrder(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondUnauthorized(c)
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	db := config.GetDB()
	var material models.Material
	if err := db.Where("id = ? AND user_id = ?", req.MaterialID, userID).First(&material).Error; err != nil {
		respondMaterialNotFound(c)
		return
	}

	order := models.Order{
		UserID:               userID,
		MaterialID:           req.MaterialID,
		OrderNumber:          utils.GenerateOrderNumber(),
		Quantity:             req.Quantity,
		UnitPrice:            req.UnitPrice,
		TotalAmount:          orderTotal(req.UnitPrice, req.Quantity),
		Supplier:             req.Supplier,
		SupplierOrderID:      req.SupplierOrderID,
		ExpectedDeliveryDate: req.ExpectedDeliveryDate,
		Status:               models.OrderStatusOrdered,
		Notes:                req.Notes,
	}

	if err := db.Create(&order).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create order",
			},
		})
		return
	}

	if err := db.Preload("Material").First(&order, order.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load order details",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    order,
	})
}

// GetOrder handles GET /api/v1/orders/:id
func GetOrder(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondUnauthorized(c)
		return
	}

	db := config.GetDB()
	var order models.Order
	if err := db.Preload("Material").Where("id = ? AND user_id = ?", c.Param("id"), userID).First(&order).Error; err != nil {
		respondOrderNotFound(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// UpdateOrder handles PUT /api/v1/orders/:id
// Orders can no longer be edited once shipped, delivered, or cancelled.
func UpdateOrder(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondUnauthorized(c)
		return
	}

	var req UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	db := config.GetDB()
	var order models.Order
	if err := db.Where("id = ? AND user_id = ?", c.Param("id"), userID).First(&order).Error; err != nil {
		respondOrderNotFound(c)
		return
	}

	if !order.CanEdit() {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_STATUS",
				"message": "Order can no longer be edited",
			},
		})
		return
	}

	if req.Quantity != nil {
		order.Quantity = *req.Quantity
	}
	if req.UnitPrice != nil {
		order.UnitPrice = req.UnitPrice
	}
	if req.Supplier != nil {
		order.Supplier = req.Supplier
	}
	if req.SupplierOrderID != nil {
		order.SupplierOrderID = req.SupplierOrderID
	}
	if req.ExpectedDeliveryDate != nil {
		order.ExpectedDeliveryDate = req.ExpectedDeliveryDate
	}
	if req.ActualDeliveryDate != nil {
		order.ActualDeliveryDate = req.ActualDeliveryDate
	}
	if req.Status != nil {
		order.Status = *req.Status
	}
	if req.Notes != nil {
		order.Notes = req.Notes
	}
	order.TotalAmount = orderTotal(order.UnitPrice, order.Quantity)

	if err := db.Save(&order).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update order",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// CancelOrder handles POST /api/v1/orders/:id/cancel
// Cancelled orders stop counting toward effective inventory.
func CancelOrder(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondUnauthorized(c)
		return
	}

	db := config.GetDB()
	var order models.Order
	if err := db.Where("id = ? AND user_id = ?", c.Param("id"), userID).First(&order).Error; err != nil {
		respondOrderNotFound(c)
		return
	}

	if !order.CanCancel() {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_STATUS",
				"message": "Order can no longer be cancelled",
			},
		})
		return
	}

	order.Status = models.OrderStatusCancelled
	if err := db.Save(&order).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to cancel order",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// orderTotal computes unit_price * quantity, rounded to cents
func orderTotal(unitPrice *float64, quantity int) *float64 {
	if unitPrice == nil {
		return nil
	}
	total, _ := decimal.NewFromFloat(*unitPrice).
		Mul(decimal.NewFromInt(int64(quantity))).
		Round(2).
		Float64()
	return &total
}

func respondOrderNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "ORDER_NOT_FOUND",
			"message": "Order not found",
		},
	})
}
