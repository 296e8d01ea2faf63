package main

import (
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/tally-hq/tally-api/config"
	"github.com/tally-hq/tally-api/controllers"
	"github.com/tally-hq/tally-api/middleware"
	"github.com/tally-hq/tally-api/models"
	"github.com/tally-hq/tally-api/services"
)

func main() {
	log.Println("Starting Tally API server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto-migrate database models
	db := config.GetDB()
	if err := db.AutoMigrate(
		&models.Material{},
		&models.Product{},
		&models.Order{},
		&models.Fulfillment{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	// Initialize image storage when a bucket is configured
	if cfg.HasS3() {
		s3Service, err := services.InitS3Service()
		if err != nil {
			log.Fatalf("Failed to initialize S3 service: %v", err)
		}
		services.InitImageService(s3Service)
		log.Printf("Image storage enabled (bucket %s)", cfg.AWSS3Bucket)
	} else {
		log.Println("AWS_S3_BUCKET not set, image uploads disabled")
	}

	// Initialize Gin router
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Health check endpoint
		v1.GET("/health", healthCheck)

		// Database status endpoint
		v1.GET("/database/status", databaseStatus)
	}

	// Authenticated routes
	authorized := v1.Group("")
	authorized.Use(middleware.EnsureValidToken(cfg))
	{
		// Account
		authorized.GET("/me", controllers.GetAccount)

		// Materials and the inventory ledger
		authorized.GET("/materials", controllers.ListMaterials)
		authorized.POST("/materials", controllers.CreateMaterial)
		authorized.GET("/materials/:id", controllers.GetMaterial)
		authorized.PUT("/materials/:id", controllers.UpdateMaterial)
		authorized.POST("/materials/:id/inventory", controllers.AdjustMaterialInventory)
		authorized.POST("/materials/:id/image", controllers.UploadMaterialImage)

		// Products
		authorized.GET("/products", controllers.ListProducts)
		authorized.POST("/products", controllers.CreateProduct)
		authorized.GET("/products/:id", controllers.GetProduct)
		authorized.PUT("/products/:id", controllers.UpdateProduct)
		authorized.DELETE("/products/:id", controllers.DeleteProduct)
		authorized.POST("/products/:id/image", controllers.UploadProductImage)

		// Supplier orders
		authorized.GET("/orders", controllers.ListOrders)
		authorized.POST("/orders", controllers.CreateOrder)
		authorized.GET("/orders/:id", controllers.GetOrder)
		authorized.PUT("/orders/:id", controllers.UpdateOrder)
		authorized.POST("/orders/:id/cancel", controllers.CancelOrder)

		// Customer fulfillments
		authorized.GET("/fulfillments", controllers.ListFulfillments)
		authorized.POST("/fulfillments", controllers.CreateFulfillment)
		authorized.GET("/fulfillments/:id", controllers.GetFulfillment)
		authorized.PUT("/fulfillments/:id", controllers.UpdateFulfillment)
		authorized.DELETE("/fulfillments/:id", controllers.DeleteFulfillment)
		authorized.PATCH("/fulfillments/:id/status", controllers.UpdateFulfillmentStatus)

		// Suggested orders
		authorized.GET("/suggested-orders", controllers.ListSuggestedOrders)
		authorized.POST("/suggested-orders", controllers.AcceptSuggestedOrder)
	}

	// Start server
	port := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", port)
	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Tally API is running",
	})
}

// databaseStatus checks database connectivity and returns table information
func databaseStatus(c *gin.Context) {
	db := config.GetDB()

	// Get the underlying SQL database to check connection
	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	// Ping the database to verify connection
	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	// Get list of tables
	var tables []string
	if err := db.Raw("SELECT tablename FROM pg_tables WHERE schemaname = 'public'").Scan(&tables).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_QUERY_ERROR",
				"message": "Failed to query tables",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
		"tables":  tables,
	})
}
