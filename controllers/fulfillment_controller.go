package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tally-hq/tally-api/config"
	"github.com/tally-hq/tally-api/middleware"
	"github.com/tally-hq/tally-api/models"
	"github.com/tally-hq/tally-api/services"
	"github.com/tally-hq/tally-api/utils"
)

// CreateFulfillmentRequest represents the request body for creating a fulfillment
type CreateFulfillmentRequest struct {
	ProductID     uint    `json:"product_id" binding:"required"`
	Quantity      int     `json:"quantity" binding:"required,gt=0"`
	CustomerEmail string  `json:"customer_email" binding:"required,email"`
	Notes         *string `json:"notes"`
}

// UpdateFulfillmentRequest represents the request body for editing a fulfillment
type UpdateFulfillmentRequest struct {
	ProductID     *uint   `json:"product_id"`
	Quantity      *int    `json:"quantity" binding:"omitempty,gt=0"`
	CustomerEmail *string `json:"customer_email" binding:"omitempty,email"`
	Notes         *string `json:"notes"`
}

// UpdateFulfillmentStatusRequest represents the request body for a status transition
type UpdateFulfillmentStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending processing shipped delivered cancelled"`
}

// ListFulfillments handles GET /api/v1/fulfillments
// Supports ?status=, ?customer= and ?q= filters, newest first
func ListFulfillments(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondUnauthorized(c)
		return
	}

	db := config.GetDB()
	query := db.Preload("Product").Preload("Product.Material").
		Where("user_id = ?", userID).
		Order("created_at DESC")

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if customer := c.Query("customer"); customer != "" {
		query = query.Where("customer_email = ?", customer)
	}
	if q := c.Query("q"); q != "" {
		like := "%" + q + "%"
		query = query.Where("fulfillment_id LIKE ? OR customer_email LIKE ? OR notes LIKE ?", like, like, like)
	}

	var fulfillments []models.Fulfillment
	if err := query.Find(&fulfillments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load fulfillments",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    fulfillments,
	})
}

// CreateFulfillment handles POST /api/v1/fulfillments
// A successful create accumulates the quantity onto the linked material's
// needed inventory. That second write is best-effort: if it fails the
// fulfillment stands and the failure is only logged.
func CreateFulfillment(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondUnauthorized(c)
		return
	}

	var req CreateFulfillmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	db := config.GetDB()
	var product models.Product
	if err := db.Where("id = ? AND user_id = ?", req.ProductID, userID).First(&product).Error; err != nil {
		respondProductNotFound(c)
		return
	}

	fulfillment := models.Fulfillment{
		UserID:        userID,
		FulfillmentID: utils.GenerateFulfillmentID(),
		ProductID:     req.ProductID,
		Quantity:      req.Quantity,
		CustomerEmail: req.CustomerEmail,
		Notes:         req.Notes,
		Status:        models.FulfillmentStatusPending,
	}

	if err := db.Create(&fulfillment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create fulfillment",
			},
		})
		return
	}

	// Secondary step: accumulate demand onto the linked material
	services.ApplyFulfillmentDelta(db, userID, fulfillment.ProductID, fulfillment.Quantity)

	if err := db.Preload("Product").Preload("Product.Material").First(&fulfillment, fulfillment.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load fulfillment details",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    fulfillment,
	})
}

// GetFulfillment handles GET /api/v1/fulfillments/:id
func GetFulfillment(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondUnauthorized(c)
		return
	}

	db := config.GetDB()
	var fulfillment models.Fulfillment
	if err := db.Preload("Product").Preload("Product.Material").
		Where("id = ? AND user_id = ?", c.Param("id"), userID).First(&fulfillment).Error; err != nil {
		respondFulfillmentNotFound(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    fulfillment,
	})
}

// UpdateFulfillment handles PUT /api/v1/fulfillments/:id
// Only pending and processing fulfillments may be edited. A quantity change
// mirrors its delta onto the linked material's needed inventory.
func UpdateFulfillment(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondUnauthorized(c)
		return
	}

	var req UpdateFulfillmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	db := config.GetDB()
	var fulfillment models.Fulfillment
	if err := db.Where("id = ? AND user_id = ?", c.Param("id"), userID).First(&fulfillment).Error; err != nil {
		respondFulfillmentNotFound(c)
		return
	}

	if !fulfillment.CanEdit() {
		respondFulfillmentLocked(c)
		return
	}

	oldQuantity := fulfillment.Quantity

	if req.ProductID != nil && *req.ProductID != fulfillment.ProductID {
		var product models.Product
		if err := db.Where("id = ? AND user_id = ?", *req.ProductID, userID).First(&product).Error; err != nil {
			respondProductNotFound(c)
			return
		}
		fulfillment.ProductID = *req.ProductID
		fulfillment.Product = product
	}
	if req.Quantity != nil {
		fulfillment.Quantity = *req.Quantity
	}
	if req.CustomerEmail != nil {
		fulfillment.CustomerEmail = *req.CustomerEmail
	}
	if req.Notes != nil {
		fulfillment.Notes = req.Notes
	}

	if err := db.Save(&fulfillment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update fulfillment",
			},
		})
		return
	}

	// Secondary step: mirror the quantity delta onto the linked material
	services.ApplyFulfillmentDelta(db, userID, fulfillment.ProductID, fulfillment.Quantity-oldQuantity)

	if err := db.Preload("Product").Preload("Product.Material").First(&fulfillment, fulfillment.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load fulfillment details",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    fulfillment,
	})
}

// DeleteFulfillment handles DELETE /api/v1/fulfillments/:id
// Only pending and processing fulfillments may be deleted. A successful
// delete releases the accumulated demand from the linked material.
func DeleteFulfillment(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondUnauthorized(c)
		return
	}

	db := config.GetDB()
	var fulfillment models.Fulfillment
	if err := db.Where("id = ? AND user_id = ?", c.Param("id"), userID).First(&fulfillment).Error; err != nil {
		respondFulfillmentNotFound(c)
		return
	}

	if !fulfillment.CanEdit() {
		respondFulfillmentLocked(c)
		return
	}

	if err := db.Delete(&fulfillment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete fulfillment",
			},
		})
		return
	}

	// Secondary step: release the demand held by this fulfillment
	services.ApplyFulfillmentDelta(db, userID, fulfillment.ProductID, -fulfillment.Quantity)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"id": fulfillment.ID,
		},
	})
}

// UpdateFulfillmentStatus handles PATCH /api/v1/fulfillments/:id/status
// Transitions follow pending -> processing -> shipped -> delivered, with
// cancellation allowed from pending and processing. Status changes never
// touch inventory; only quantity changes do.
func UpdateFulfillmentStatus(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondUnauthorized(c)
		return
	}

	var req UpdateFulfillmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	db := config.GetDB()
	var fulfillment models.Fulfillment
	if err := db.Where("id = ? AND user_id = ?", c.Param("id"), userID).First(&fulfillment).Error; err != nil {
		respondFulfillmentNotFound(c)
		return
	}

	if !fulfillment.CanTransitionTo(req.Status) {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_TRANSITION",
				"message": "Cannot transition from " + fulfillment.Status + " to " + req.Status,
			},
		})
		return
	}

	fulfillment.Status = req.Status
	if err := db.Save(&fulfillment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update fulfillment status",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    fulfillment,
	})
}

func respondFulfillmentNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "FULFILLMENT_NOT_FOUND",
			"message": "Fulfillment not found",
		},
	})
}

func respondFulfillmentLocked(c *gin.Context) {
	c.JSON(http.StatusConflict, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "INVALID_STATUS",
			"message": "Fulfillment can only be changed while pending or processing",
		},
	})
}
