package controllers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tally-hq/tally-api/config"
	"github.com/tally-hq/tally-api/middleware"
	"github.com/tally-hq/tally-api/services"
)

// AcceptSuggestionRequest represents the request body for accepting a suggestion
type AcceptSuggestionRequest struct {
	MaterialID uint `json:"material_id" binding:"required"`
}

// ListSuggestedOrders handles GET /api/v1/suggested-orders
// Runs the suggestion computation over the caller's current snapshot.
func ListSuggestedOrders(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondUnauthorized(c)
		return
	}

	db := config.GetDB()
	suggestions, err := services.ComputeSuggestedOrders(db, userID)
	if err != nil {
		log.Printf("Failed to compute suggested orders: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to compute suggested orders",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    suggestions,
	})
}

// AcceptSuggestedOrder handles POST /api/v1/suggested-orders
// The shortfall is recomputed server-side before the order is created, so a
// stale suggestion can never over-order.
func AcceptSuggestedOrder(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondUnauthorized(c)
		return
	}

	var req AcceptSuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	db := config.GetDB()
	order, err := services.AcceptSuggestedOrder(db, userID, req.MaterialID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMaterialNotFound):
			respondMaterialNotFound(c)
		case errors.Is(err, services.ErrNoShortfall):
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "NO_SHORTFALL",
					"message": "Material is already covered by stock and open orders",
				},
			})
		default:
			log.Printf("Failed to accept suggested order for material %d: %v", req.MaterialID, err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to create suggested order",
				},
			})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    order,
	})
}
