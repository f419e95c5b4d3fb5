package router

import (
	"storefront_backend/internal/handlers"
	"storefront_backend/internal/middleware"
	"storefront_backend/internal/models"

	"github.com/gin-gonic/gin"
)

// SetupAuthRoutes sets up the authentication routes.
func SetupAuthRoutes(apiGroup *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	authRoutes := apiGroup.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.RegisterUser)
		authRoutes.POST("/login", authHandler.LoginUser)
		authRoutes.POST("/refresh-token", authHandler.RefreshToken)

		authRequiredRoutes := authRoutes.Group("")
		authRequiredRoutes.Use(middleware.AuthMiddleware())
		{
			authRequiredRoutes.POST("/logout", authHandler.LogoutUser)
			authRequiredRoutes.GET("/me", authHandler.GetCurrentUser)
		}
	}
}

// SetupWarehouseRoutes sets up the warehouse registry and ledger routes.
// Registry writes are admin/manager; ledger reads and mutations include staff.
func SetupWarehouseRoutes(authenticatedGroup *gin.RouterGroup, warehouseHandler *handlers.WarehouseHandler) {
	warehouseWriteRoutes := authenticatedGroup.Group("/warehouses")
	warehouseWriteRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleManager))
	{
		warehouseWriteRoutes.POST("", warehouseHandler.CreateWarehouse)
		warehouseWriteRoutes.PUT("/:id", warehouseHandler.UpdateWarehouse)
		warehouseWriteRoutes.DELETE("/:id", warehouseHandler.DeleteWarehouse)
	}

	warehouseRoutes := authenticatedGroup.Group("/warehouses")
	warehouseRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleManager, models.RoleStaff))
	{
		warehouseRoutes.GET("", warehouseHandler.GetWarehouses)
		warehouseRoutes.GET("/:id", warehouseHandler.GetWarehouseByID)
		warehouseRoutes.POST("/:id/stock", warehouseHandler.MutateStock)
		warehouseRoutes.GET("/:id/stock/:productId/available", warehouseHandler.GetAvailableStock)
	}
}

// SetupProductRoutes sets up the catalog product routes.
func SetupProductRoutes(authenticatedGroup *gin.RouterGroup, productHandler *handlers.ProductHandler) {
	productWriteRoutes := authenticatedGroup.Group("/products")
	productWriteRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleManager))
	{
		productWriteRoutes.POST("", productHandler.CreateProduct)
		productWriteRoutes.PUT("/:id", productHandler.UpdateProduct)
		productWriteRoutes.DELETE("/:id", productHandler.DeleteProduct)
	}

	productRoutes := authenticatedGroup.Group("/products")
	productRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleManager, models.RoleStaff))
	{
		productRoutes.GET("", productHandler.GetProducts)
		productRoutes.GET("/:id", productHandler.GetProductByID)
	}
}

// SetupAdjustmentRoutes sets up the inventory adjustment lifecycle routes.
// Any authenticated role may propose; only admin/manager review.
func SetupAdjustmentRoutes(authenticatedGroup *gin.RouterGroup, adjustmentHandler *handlers.AdjustmentHandler) {
	adjustmentRoutes := authenticatedGroup.Group("/inventory-adjustments")
	adjustmentRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleManager, models.RoleStaff))
	{
		adjustmentRoutes.POST("", adjustmentHandler.CreateAdjustment)
		adjustmentRoutes.GET("", adjustmentHandler.GetAdjustments)
		adjustmentRoutes.GET("/:id", adjustmentHandler.GetAdjustmentByID)
	}

	adjustmentReviewRoutes := authenticatedGroup.Group("/inventory-adjustments")
	adjustmentReviewRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleManager))
	{
		adjustmentReviewRoutes.PATCH("/:id/approve", adjustmentHandler.ApproveAdjustment)
		adjustmentReviewRoutes.PATCH("/:id/reject", adjustmentHandler.RejectAdjustment)
		adjustmentReviewRoutes.DELETE("/:id", adjustmentHandler.DeleteAdjustment)
	}
}

// SetupTransferRoutes sets up the stock transfer lifecycle routes.
func SetupTransferRoutes(authenticatedGroup *gin.RouterGroup, transferHandler *handlers.TransferHandler) {
	transferRoutes := authenticatedGroup.Group("/stock-transfers")
	transferRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleManager, models.RoleStaff))
	{
		transferRoutes.POST("", transferHandler.CreateTransfer)
		transferRoutes.GET("", transferHandler.GetTransfers)
		transferRoutes.GET("/:id", transferHandler.GetTransferByID)
		transferRoutes.PATCH("/:id/dispatch", transferHandler.DispatchTransfer)
		transferRoutes.PATCH("/:id/complete", transferHandler.CompleteTransfer)
		transferRoutes.PATCH("/:id/cancel", transferHandler.CancelTransfer)
	}
}

// SetupAlertRoutes sets up the derived alert and statistics routes.
func SetupAlertRoutes(authenticatedGroup *gin.RouterGroup, alertHandler *handlers.AlertHandler) {
	alertRoutes := authenticatedGroup.Group("/inventory")
	alertRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleManager, models.RoleStaff))
	{
		alertRoutes.GET("/alerts", alertHandler.GetAlerts)
		alertRoutes.GET("/stats", alertHandler.GetStats)
	}
}

// SetupActivityRoutes sets up the audit trail routes.
func SetupActivityRoutes(authenticatedGroup *gin.RouterGroup, activityHandler *handlers.ActivityHandler) {
	activityRoutes := authenticatedGroup.Group("/activity-log")
	activityRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleManager))
	{
		activityRoutes.GET("", activityHandler.GetActivityLog)
	}
}
