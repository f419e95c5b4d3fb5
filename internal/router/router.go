package router

import (
	"database/sql"

	"storefront_backend/internal/handlers"
	"storefront_backend/internal/middleware"
	"storefront_backend/internal/repositories"
	"storefront_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// Setup initializes the routing for the application.
func Setup(engine *gin.Engine, db *sql.DB) {
	// Initialize Repositories
	authRepo := repositories.NewAuthRepository(db)
	warehouseRepo := repositories.NewWarehouseRepository(db)
	productRepo := repositories.NewProductRepository(db)
	adjustmentRepo := repositories.NewAdjustmentRepository(db)
	transferRepo := repositories.NewTransferRepository(db)
	activityRepo := repositories.NewActivityLogRepository(db)

	// Initialize Services
	activityService := services.NewActivityService(activityRepo, db)
	authService := services.NewAuthService(authRepo, db)
	warehouseService := services.NewWarehouseService(warehouseRepo, productRepo, activityService, db)
	productService := services.NewProductService(productRepo, activityService, db)
	adjustmentService := services.NewAdjustmentService(adjustmentRepo, warehouseRepo, productRepo, activityService, db)
	transferService := services.NewTransferService(transferRepo, warehouseRepo, productRepo, activityService, db)
	alertService := services.NewAlertService(warehouseRepo, productRepo, transferRepo, adjustmentRepo, db)

	// Initialize Handlers
	authHandler := handlers.NewAuthHandler(authService)
	warehouseHandler := handlers.NewWarehouseHandler(warehouseService)
	productHandler := handlers.NewProductHandler(productService)
	adjustmentHandler := handlers.NewAdjustmentHandler(adjustmentService)
	transferHandler := handlers.NewTransferHandler(transferService)
	alertHandler := handlers.NewAlertHandler(alertService)
	activityHandler := handlers.NewActivityHandler(activityService)

	apiV1 := engine.Group("/api/v1")

	SetupAuthRoutes(apiV1, authHandler)

	authenticated := apiV1.Group("")
	authenticated.Use(middleware.AuthMiddleware())
	{
		SetupWarehouseRoutes(authenticated, warehouseHandler)
		SetupProductRoutes(authenticated, productHandler)
		SetupAdjustmentRoutes(authenticated, adjustmentHandler)
		SetupTransferRoutes(authenticated, transferHandler)
		SetupAlertRoutes(authenticated, alertHandler)
		SetupActivityRoutes(authenticated, activityHandler)
	}
}
