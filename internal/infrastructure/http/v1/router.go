// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"backoffice/internal/core/numerator"
	"backoffice/internal/domain/cart"
	"backoffice/internal/domain/checkout"
	"backoffice/internal/domain/delivery"
	"backoffice/internal/domain/ledger/cash"
	"backoffice/internal/domain/ledger/stock"
	"backoffice/internal/infrastructure/http/v1/handlers"
	"backoffice/internal/infrastructure/http/v1/middleware"
	"backoffice/internal/infrastructure/storage/postgres"
	"backoffice/pkg/logger"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Pool is the database connection pool (for health checks)
	Pool *postgres.Pool

	// TxManager drives transactional repositories
	TxManager *postgres.TxManager

	// Logger for request logging
	Logger *logger.Logger

	// Numerator for document number generation
	Numerator numerator.Generator

	// Audit records entity change history (may be nil)
	Audit *postgres.AuditService
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger.WithComponent("http")))
	router.Use(middleware.ErrorHandler())

	// Health endpoints
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	// Wire repositories and services once; TxManager handles per-request
	// transaction state through the context.
	productRepo := postgres.NewProductRepo(cfg.TxManager)
	stockRepo := postgres.NewStockRepo(cfg.TxManager)
	cashRepo := postgres.NewCashRepo(cfg.TxManager)
	orderRepo := postgres.NewOrderRepo(cfg.TxManager)
	deliveryRepo := postgres.NewDeliveryRepo(cfg.TxManager)

	stockService := stock.NewService(stockRepo, productRepo, cfg.TxManager)
	cashService := cash.NewService(cashRepo, cfg.TxManager)

	var auditor checkout.Auditor
	if cfg.Audit != nil {
		auditor = cfg.Audit
	}
	checkoutService := checkout.NewService(orderRepo, stockService, cashService, cfg.Numerator, cfg.TxManager, auditor)

	var deliveryAuditor delivery.Auditor
	if cfg.Audit != nil {
		deliveryAuditor = cfg.Audit
	}
	deliveryService := delivery.NewService(deliveryRepo, stockService, cfg.TxManager, deliveryAuditor)

	registry := cart.NewRegistry()
	baseHandler := handlers.NewBaseHandler()

	cartHandler := handlers.NewCartHandler(baseHandler, registry, productRepo, stockService)
	checkoutHandler := handlers.NewCheckoutHandler(baseHandler, checkoutService, registry, cfg.Audit)
	deliveryHandler := handlers.NewDeliveryHandler(baseHandler, deliveryService)
	cashHandler := handlers.NewCashHandler(baseHandler, cashService)
	stockHandler := handlers.NewStockHandler(baseHandler, stockService)

	// API v1
	v1 := router.Group("/api/v1")
	{
		carts := v1.Group("/carts/:terminal")
		{
			carts.GET("", cartHandler.Get)
			carts.DELETE("", cartHandler.Clear)
			carts.POST("/items", cartHandler.AddItem)
			carts.DELETE("/items/:productId", cartHandler.RemoveItem)
			carts.PATCH("/items/:productId", cartHandler.SetQuantity)
			carts.PATCH("/items/:productId/discount", cartHandler.SetDiscount)
		}

		v1.POST("/checkout", checkoutHandler.Checkout)
		v1.GET("/orders/:id", checkoutHandler.GetOrder)
		v1.GET("/orders/:id/history", checkoutHandler.History)

		notes := v1.Group("/delivery-notes")
		{
			notes.GET("/:id", deliveryHandler.Get)
			notes.POST("/:id/receive", deliveryHandler.Receive)
		}

		registers := v1.Group("/cash-registers/:id")
		{
			registers.GET("", cashHandler.Get)
			registers.POST("/entries", cashHandler.Record)
			registers.GET("/entries", cashHandler.ListEntries)
		}

		stockGroup := v1.Group("/stock")
		{
			stockGroup.GET("/entries", stockHandler.GetEntry)
			stockGroup.GET("/movements", stockHandler.GetMovements)
		}
	}

	return router
}
