package controllers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tally-hq/tally-api/config"
	"github.com/tally-hq/tally-api/middleware"
	"github.com/tally-hq/tally-api/models"
	"github.com/tally-hq/tally-api/services"
)

// CreateMaterialRequest represents the request body for creating a material
type CreateMaterialRequest struct {
	Name              string   `json:"name" binding:"required"`
	Description       string   `json:"description"`
	Unit              string   `json:"unit" binding:"required"`
	CurrentInventory  int      `json:"current_inventory" binding:"omitempty,gte=0"`
	NeededInventory   int      `json:"needed_inventory" binding:"omitempty,gte=0"`
	Category          *string  `json:"category"`
	UnitCost          *float64 `json:"unit_cost" binding:"omitempty,gte=0"`
	Supplier          *string  `json:"supplier"`
	SKU               *string  `json:"sku"`
	LowStockThreshold *int     `json:"low_stock_threshold" binding:"omitempty,gte=0"`
	ImageURL          *string  `json:"image_url"`
	Status            string   `json:"status" binding:"omitempty,oneof=active inactive discontinued"`
}

// UpdateMaterialRequest represents the request body for updating a material.
// Inventory counters are deliberately absent: current inventory changes go
// through the adjustment endpoint and needed inventory is maintained by
// fulfillment deltas.
type UpdateMaterialRequest struct {
	Name              *string  `json:"name"`
	Description       *string  `json:"description"`
	Unit              *string  `json:"unit"`
	Category          *string  `json:"category"`
	UnitCost          *float64 `json:"unit_cost" binding:"omitempty,gte=0"`
	Supplier          *string  `json:"supplier"`
	SKU               *string  `json:"sku"`
	LowStockThreshold *int     `json:"low_stock_threshold" binding:"omitempty,gte=0"`
	ImageURL          *string  `json:"image_url"`
	Status            *string  `json:"status" binding:"omitempty,oneof=active inactive discontinued"`
}

// AdjustInventoryRequest represents the request body for a stock adjustment
type AdjustInventoryRequest struct {
	Delta int `json:"delta" binding:"required"`
}

// ListMaterials handles GET /api/v1/materials
// Supports ?status=, ?category= and ?q= filters, all applied in the query
func ListMaterials(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondUnauthorized(c)
		return
	}

	db := config.GetDB()
	query := db.Where("user_id = ?", userID).Order("name")

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if q := c.Query("q"); q != "" {
		like := "%" + q + "%"
		query = query.Where("name LIKE ? OR description LIKE ? OR sku LIKE ?", like, like, like)
	}

	var materials []models.Material
	if err := query.Find(&materials).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load materials",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    materials,
	})
}

// CreateMaterial handles POST /api/v1/materials
func CreateMaterial(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondUnauthorized(c)
		return
	}

	var req CreateMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	status := req.Status
	if status == "" {
		status = models.MaterialStatusActive
	}

	material := models.Material{
		UserID:            userID,
		Name:              req.Name,
		Description:       req.Description,
		Unit:              req.Unit,
		CurrentInventory:  req.CurrentInventory,
		NeededInventory:   req.NeededInventory,
		Category:          req.Category,
		UnitCost:          req.UnitCost,
		Supplier:          req.Supplier,
		SKU:               req.SKU,
		LowStockThreshold: req.LowStockThreshold,
		ImageURL:          req.ImageURL,
		Status:            status,
	}

	db := config.GetDB()
	if err := db.Create(&material).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create material",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    material,
	})
}

// GetMaterial handles GET /api/v1/materials/:id
func GetMaterial(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondUnauthorized(c)
		return
	}

	db := config.GetDB()
	var material models.Material
	if err := db.Where("id = ? AND user_id = ?", c.Param("id"), userID).First(&material).Error; err != nil {
		respondMaterialNotFound(c)
		return
	}

	attachMaterialImageURL(&material)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    material,
	})
}

// UpdateMaterial handles PUT /api/v1/materials/:id
// Materials are never hard-deleted; retiring one is a status change here.
func UpdateMaterial(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondUnauthorized(c)
		return
	}

	var req UpdateMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	db := config.GetDB()
	var material models.Material
	if err := db.Where("id = ? AND user_id = ?", c.Param("id"), userID).First(&material).Error; err != nil {
		respondMaterialNotFound(c)
		return
	}

	if req.Name != nil {
		material.Name = *req.Name
	}
	if req.Description != nil {
		material.Description = *req.Description
	}
	if req.Unit != nil {
		material.Unit = *req.Unit
	}
	if req.Category != nil {
		material.Category = req.Category
	}
	if req.UnitCost != nil {
		material.UnitCost = req.UnitCost
	}
	if req.Supplier != nil {
		material.Supplier = req.Supplier
	}
	if req.SKU != nil {
		material.SKU = req.SKU
	}
	if req.LowStockThreshold != nil {
		material.LowStockThreshold = req.LowStockThreshold
	}
	if req.ImageURL != nil {
		material.ImageURL = req.ImageURL
	}
	if req.Status != nil {
		material.Status = *req.Status
	}

	if err := db.Save(&material).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update material",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    material,
	})
}

// AdjustMaterialInventory handles POST /api/v1/materials/:id/inventory
// The delta is applied atomically at the datastore and clamped at zero.
func AdjustMaterialInventory(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondUnauthorized(c)
		return
	}

	var req AdjustInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	db := config.GetDB()
	materialID, ok := parseIDParam(c)
	if !ok {
		return
	}

	material, err := services.AdjustCurrentInventory(db, userID, materialID, req.Delta)
	if err != nil {
		if errors.Is(err, services.ErrMaterialNotFound) {
			respondMaterialNotFound(c)
			return
		}
		log.Printf("Failed to adjust inventory for material %d: %v", materialID, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to adjust inventory",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    material,
	})
}

// attachMaterialImageURL fills the computed presigned URL for an uploaded image
func attachMaterialImageURL(material *models.Material) {
	if material.ImageS3Key == nil || *material.ImageS3Key == "" {
		return
	}
	imageService := services.GetImageService()
	if imageService == nil {
		return
	}
	url, err := imageService.GetImageURL(*material.ImageS3Key)
	if err != nil {
		log.Printf("Failed to presign image for material %d: %v", material.ID, err)
		return
	}
	material.PresignedImageURL = &url
}

func respondMaterialNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "MATERIAL_NOT_FOUND",
			"message": "Material not found",
		},
	})
}
