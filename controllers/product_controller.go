package controllers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tally-hq/tally-api/config"
	"github.com/tally-hq/tally-api/middleware"
	"github.com/tally-hq/tally-api/models"
	"github.com/tally-hq/tally-api/services"
)

// CreateProductRequest represents the request body for creating a product
type CreateProductRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	Price       *float64 `json:"price" binding:"omitempty,gte=0"`
	ImageURL    *string  `json:"image_url"`
	MaterialID  *uint    `json:"material_id"`
}

// UpdateProductRequest represents the request body for updating a product
type UpdateProductRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	Price       *float64 `json:"price" binding:"omitempty,gte=0"`
	ImageURL    *string  `json:"image_url"`
	MaterialID  *uint    `json:"material_id"`
	// ClearMaterial detaches the product from its material when true
	ClearMaterial bool `json:"clear_material"`
}

// ListProducts handles GET /api/v1/products
// Supports ?category= and ?q= filters applied in the query
func ListProducts(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondUnauthorized(c)
		return
	}

	db := config.GetDB()
	query := db.Preload("Material").Where("user_id = ?", userID).Order("name")

	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if q := c.Query("q"); q != "" {
		like := "%" + q + "%"
		query = query.Where("name LIKE ? OR description LIKE ?", like, like)
	}

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load products",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    products,
	})
}

// CreateProduct handles POST /api/v1/products
func CreateProduct(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondUnauthorized(c)
		return
	}

	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	db := config.GetDB()

	// The material reference is weak but must point at one of the caller's
	// own materials when present
	if req.MaterialID != nil {
		var material models.Material
		if err := db.Where("id = ? AND user_id = ?", *req.MaterialID, userID).First(&material).Error; err != nil {
			respondMaterialNotFound(c)
			return
		}
	}

	product := models.Product{
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		MaterialID:  req.MaterialID,
	}

	if err := db.Create(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create product",
			},
		})
		return
	}

	if err := db.Preload("Material").First(&product, product.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load product details",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    product,
	})
}

// GetProduct handles GET /api/v1/products/:id
func GetProduct(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondUnauthorized(c)
		return
	}

	db := config.GetDB()
	var product models.Product
	if err := db.Preload("Material").Where("id = ? AND user_id = ?", c.Param("id"), userID).First(&product).Error; err != nil {
		respondProductNotFound(c)
		return
	}

	attachProductImageURL(&product)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    product,
	})
}

// UpdateProduct handles PUT /api/v1/products/:id
func UpdateProduct(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondUnauthorized(c)
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	db := config.GetDB()
	var product models.Product
	if err := db.Where("id = ? AND user_id = ?", c.Param("id"), userID).First(&product).Error; err != nil {
		respondProductNotFound(c)
		return
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = req.Description
	}
	if req.Category != nil {
		product.Category = req.Category
	}
	if req.Price != nil {
		product.Price = req.Price
	}
	if req.ImageURL != nil {
		product.ImageURL = req.ImageURL
	}
	if req.ClearMaterial {
		product.MaterialID = nil
		product.Material = nil
	} else if req.MaterialID != nil {
		var material models.Material
		if err := db.Where("id = ? AND user_id = ?", *req.MaterialID, userID).First(&material).Error; err != nil {
			respondMaterialNotFound(c)
			return
		}
		product.MaterialID = req.MaterialID
	}

	if err := db.Save(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update product",
			},
		})
		return
	}

	if err := db.Preload("Material").First(&product, product.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load product details",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    product,
	})
}

// DeleteProduct handles DELETE /api/v1/products/:id
// The delete is soft and does not cascade: historical fulfillments keep
// their product reference.
func DeleteProduct(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondUnauthorized(c)
		return
	}

	db := config.GetDB()
	var product models.Product
	if err := db.Where("id = ? AND user_id = ?", c.Param("id"), userID).First(&product).Error; err != nil {
		respondProductNotFound(c)
		return
	}

	if err := db.Delete(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete product",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"id": product.ID,
		},
	})
}

// attachProductImageURL fills the computed presigned URL for an uploaded
// image, falling back to the linked material's uploaded image when the
// product itself has none.
func attachProductImageURL(product *models.Product) {
	imageService := services.GetImageService()
	if imageService == nil {
		return
	}

	key := ""
	if product.ImageS3Key != nil {
		key = *product.ImageS3Key
	} else if product.Material != nil && product.Material.ImageS3Key != nil {
		key = *product.Material.ImageS3Key
	}
	if key == "" {
		return
	}

	url, err := imageService.GetImageURL(key)
	if err != nil {
		log.Printf("Failed to presign image for product %d: %v", product.ID, err)
		return
	}
	product.PresignedImageURL = &url
}

func respondProductNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "PRODUCT_NOT_FOUND",
			"message": "Product not found",
		},
	})
}
