package handlers

import (
	"ledger-service/internal/auth"
	"ledger-service/pkg/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers groups the HTTP handlers mounted under /api/v1
type Handlers struct {
	Orders     *OrderHandler
	Inventory  *InventoryHandler
	Monitoring *MonitoringHandler
}

// RegisterRoutes mounts the API on router. authenticate runs on every route except health,
// followed by afterAuth (idempotency replay and capture), which can rely on the caller's claims.
func RegisterRoutes(router gin.IRouter, h Handlers, authenticate gin.HandlerFunc, logger *zap.Logger, afterAuth ...gin.HandlerFunc) {
	writers := middleware.RequireRole(logger, auth.RoleAdmin, auth.RoleManager, auth.RoleStaff)
	managers := middleware.RequireRole(logger, auth.RoleAdmin, auth.RoleManager)
	admins := middleware.RequireRole(logger, auth.RoleAdmin)

	v1 := router.Group("/api/v1")
	v1.GET("/health", h.Monitoring.Health)

	protected := v1.Group("")
	protected.Use(authenticate)
	protected.Use(afterAuth...)
	{
		orders := protected.Group("/orders")
		{
			orders.POST("", writers, h.Orders.CreateOrder)
			orders.GET("/:id", h.Orders.GetOrder)
			orders.PATCH("/:id/status", managers, h.Orders.UpdateOrderStatus)
		}

		inventory := protected.Group("/inventory")
		{
			inventory.POST("/stock", managers, h.Inventory.UpdateStock)
			inventory.GET("/warehouses/:id", h.Inventory.ListWarehouseInventory)
			inventory.GET("/records/:id/transactions", h.Inventory.ListRecordTransactions)
		}

		monitoring := protected.Group("/monitoring", admins)
		{
			monitoring.GET("/stats", h.Monitoring.GetStats)
			monitoring.GET("/database/status", h.Monitoring.GetDatabaseStatus)
			monitoring.GET("/reconcile", h.Monitoring.Reconcile)
		}
	}
}
