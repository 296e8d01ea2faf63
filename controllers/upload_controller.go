package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tally-hq/tally-api/config"
	"github.com/tally-hq/tally-api/middleware"
	"github.com/tally-hq/tally-api/models"
	"github.com/tally-hq/tally-api/services"
	"github.com/tally-hq/tally-api/utils"
)

// UploadMaterialImage handles POST /api/v1/materials/:id/image
// Accepts a multipart "image" field (PNG, max 10 MB), stores it in S3, and
// records the key on the material.
func UploadMaterialImage(c *gin.Context) {
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

	s3Key, ok := uploadImageFromForm(c)
	if !ok {
		return
	}

	// Replace any previous upload
	oldKey := material.ImageS3Key
	material.ImageS3Key = &s3Key
	if err := db.Save(&material).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to save image reference",
			},
		})
		return
	}
	deleteReplacedImage(oldKey)

	attachMaterialImageURL(&material)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    material,
	})
}

// UploadProductImage handles POST /api/v1/products/:id/image
func UploadProductImage(c *gin.Context) {
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

	s3Key, ok := uploadImageFromForm(c)
	if !ok {
		return
	}

	oldKey := product.ImageS3Key
	product.ImageS3Key = &s3Key
	if err := db.Save(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to save image reference",
			},
		})
		return
	}
	deleteReplacedImage(oldKey)

	attachProductImageURL(&product)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    product,
	})
}

// uploadImageFromForm validates and uploads the multipart "image" field.
// On failure it writes the error response and returns ok=false.
func uploadImageFromForm(c *gin.Context) (string, bool) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_FILE",
				"message": "No image file provided",
			},
		})
		return "", false
	}

	imageService := services.GetImageService()
	if imageService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "STORAGE_UNAVAILABLE",
				"message": "Image storage is not configured",
			},
		})
		return "", false
	}

	s3Key, err := imageService.UploadImage(fileHeader)
	if err != nil {
		var uploadErr *utils.FileUploadError
		if errors.As(err, &uploadErr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    uploadErr.Code,
					"message": uploadErr.Message,
				},
			})
			return "", false
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UPLOAD_ERROR",
				"message": "Failed to upload image",
			},
		})
		return "", false
	}

	return s3Key, true
}

// deleteReplacedImage removes a superseded upload, best-effort
func deleteReplacedImage(oldKey *string) {
	if oldKey == nil || *oldKey == "" {
		return
	}
	imageService := services.GetImageService()
	if imageService == nil {
		return
	}
	_ = imageService.DeleteImage(*oldKey)
}
