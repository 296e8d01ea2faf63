package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tally-hq/tally-api/config"
	"github.com/tally-hq/tally-api/middleware"
	"github.com/tally-hq/tally-api/services"
)

// GetAccount handles GET /api/v1/me - returns the caller's identity-provider
// profile. Account data lives entirely at the identity provider; the API only
// ever stores the subject claim on rows it writes.
func GetAccount(c *gin.Context) {
	accessToken, err := middleware.GetAccessToken(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_TOKEN",
				"message": "Access token not found",
			},
		})
		return
	}

	cfg := config.GetConfig()
	auth0Service := services.NewAuth0Service(cfg)
	userInfo, err := auth0Service.GetUserInfo(accessToken)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "AUTH0_ERROR",
				"message": "Failed to fetch user information from Auth0",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    userInfo,
	})
}
