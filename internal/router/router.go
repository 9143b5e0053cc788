// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kivoa/catalog-backend/internal/config"
	"github.com/kivoa/catalog-backend/internal/handlers"
	"github.com/kivoa/catalog-backend/internal/middleware"
	"github.com/kivoa/catalog-backend/internal/queue"
	"github.com/kivoa/catalog-backend/internal/services"
	"github.com/kivoa/catalog-backend/internal/utils"
)

// Dependencies carries the resources built at startup that the HTTP layer
// shares with the worker loops.
type Dependencies struct {
	EnrichmentQueue  queue.Queue
	CatalogSyncQueue queue.Queue
	Storage          *services.StorageService
	Catalog          *services.ShopifyService
}

func Initialize(db *gorm.DB, cfg *config.Config, deps Dependencies) *gin.Engine {
	// Initialize services
	productService := services.NewProductService(db, deps.EnrichmentQueue, deps.CatalogSyncQueue)
	categoryService := services.NewCategoryService(db)
	promptService := services.NewPromptService(db)
	rawImageService := services.NewRawImageService(db, deps.Storage)
	orderService := services.NewOrderService(db, deps.Catalog)

	// Initialize handlers
	productHandler := handlers.NewProductHandler(productService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	promptHandler := handlers.NewPromptHandler(promptService)
	rawImageHandler := handlers.NewRawImageHandler(rawImageService)
	orderHandler := handlers.NewOrderHandler(orderService)
	storageHandler := handlers.NewStorageHandler(deps.Storage)

	// Set JWT secret
	utils.SetJWTSecret(cfg.Auth.SecretKey)

	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	r.Use(middleware.GeneralRateLimit())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	v1.Use(middleware.AuthRequired())
	{
		products := v1.Group("/products")
		{
			products.GET("", productHandler.GetProducts)
			products.POST("", productHandler.CreateProduct)
			products.POST("/bulk", productHandler.BulkCreateProducts)
			products.GET("/:id", productHandler.GetProduct)
			products.PUT("/:id", productHandler.UpdateProduct)
			products.DELETE("/:id", productHandler.DeleteProduct)
			products.PUT("/:id/approve", productHandler.ApproveProduct)
			products.PUT("/:id/reject", productHandler.RejectProduct)
			products.POST("/:id/reenrich", productHandler.ReenrichProduct)
			products.PUT("/images/:imageId/approve", productHandler.ApproveImage)
			products.PUT("/images/:imageId/reject", productHandler.RejectImage)
		}

		categories := v1.Group("/categories")
		{
			categories.GET("", categoryHandler.GetCategories)
			categories.POST("", categoryHandler.CreateCategory)
			categories.GET("/:id", categoryHandler.GetCategory)
			categories.DELETE("/:id", categoryHandler.DeleteCategory)
		}

		prompts := v1.Group("/prompts")
		{
			prompts.GET("", promptHandler.GetPrompts)
			prompts.POST("", promptHandler.CreatePrompt)
			prompts.GET("/:id", promptHandler.GetPrompt)
			prompts.PUT("/:id", promptHandler.UpdatePrompt)
			prompts.PUT("/:id/default", promptHandler.SetDefaultPrompt)
			prompts.DELETE("/:id", promptHandler.DeletePrompt)
		}

		rawImages := v1.Group("/raw-images")
		{
			rawImages.POST("", middleware.UploadRateLimit(), rawImageHandler.UploadRawImage)
			rawImages.GET("", rawImageHandler.GetRawImages)
			rawImages.DELETE("/:id", rawImageHandler.DeleteRawImage)
		}

		orders := v1.Group("/orders")
		{
			orders.POST("", orderHandler.CreateOrder)
		}

		storage := v1.Group("/storage")
		{
			storage.POST("/presigned-url", storageHandler.PresignUpload)
			storage.GET("/presigned-url", storageHandler.PresignDownload)
		}
	}

	return r
}
