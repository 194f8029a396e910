// Package v1 provides HTTP API version 1.
package v1

import (
	"time"

	"github.com/gin-gonic/gin"

	"kardex/internal/domain/documents/goods_receipt"
	"kardex/internal/domain/documents/invoice_payment"
	"kardex/internal/domain/documents/purchase_order"
	"kardex/internal/domain/documents/sales_order"
	"kardex/internal/domain/documents/stock_adjustment"
	"kardex/internal/domain/documents/stock_audit"
	"kardex/internal/domain/documents/stock_transfer"
	"kardex/internal/domain/documents/waybill"
	"kardex/internal/domain/fulfillment"
	"kardex/internal/domain/ledger"
	"kardex/internal/infrastructure/http/v1/handlers"
	"kardex/internal/infrastructure/http/v1/middleware"
	"kardex/internal/infrastructure/storage/postgres"
	"kardex/internal/infrastructure/storage/postgres/document_repo"
	"kardex/internal/infrastructure/storage/postgres/ledger_repo"
	"kardex/pkg/logger"
	"kardex/pkg/numerator"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Pool is the database connection pool (for health checks)
	Pool *postgres.Pool

	// TxManager runs document transactions
	TxManager *postgres.TxManager

	// Logger for request logging
	Logger *logger.Logger

	// Numerator for document number generation
	Numerator *numerator.Service

	// Audit records who created which document. Optional.
	Audit *postgres.AuditService

	// IdempotencyEnabled enables idempotency middleware
	IdempotencyEnabled bool

	// IdempotencyTTL is how long completed keys replay. Zero means 10 minutes.
	IdempotencyTTL time.Duration
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	// Repositories
	stockRepo := ledger_repo.NewStockRepo(cfg.TxManager)
	fulfillmentRepo := document_repo.NewFulfillmentRepo(cfg.TxManager)
	goodsReceiptRepo := document_repo.NewGoodsReceiptRepo(cfg.TxManager)
	waybillRepo := document_repo.NewWaybillRepo(cfg.TxManager)
	purchaseOrderRepo := document_repo.NewPurchaseOrderRepo(cfg.TxManager)
	salesOrderRepo := document_repo.NewSalesOrderRepo(cfg.TxManager)
	adjustmentRepo := document_repo.NewStockAdjustmentRepo(cfg.TxManager)
	auditDocRepo := document_repo.NewStockAuditRepo(cfg.TxManager)
	transferRepo := document_repo.NewStockTransferRepo(cfg.TxManager)
	invoiceRepo := document_repo.NewInvoicePaymentRepo(cfg.TxManager)

	// Services
	ledgerSvc := ledger.NewService(stockRepo)
	fulfillmentSvc := fulfillment.NewService(fulfillmentRepo)
	goodsReceiptSvc := goods_receipt.NewService(goodsReceiptRepo, ledgerSvc, fulfillmentSvc, cfg.Numerator, cfg.TxManager)
	waybillSvc := waybill.NewService(waybillRepo, ledgerSvc, fulfillmentSvc, cfg.Numerator, cfg.TxManager)
	purchaseOrderSvc := purchase_order.NewService(purchaseOrderRepo, cfg.Numerator, cfg.TxManager)
	salesOrderSvc := sales_order.NewService(salesOrderRepo, cfg.Numerator, cfg.TxManager)
	adjustmentSvc := stock_adjustment.NewService(adjustmentRepo, ledgerSvc, cfg.Numerator, cfg.TxManager)
	stockAuditSvc := stock_audit.NewService(auditDocRepo, ledgerSvc, cfg.Numerator, cfg.TxManager)
	transferSvc := stock_transfer.NewService(transferRepo, ledgerSvc, cfg.Numerator, cfg.TxManager)
	invoiceSvc := invoice_payment.NewService(invoiceRepo, cfg.Numerator, cfg.TxManager)

	// Handlers
	base := handlers.NewBaseHandler(cfg.Audit)

	// API v1
	api := router.Group("/api/v1")
	api.Use(middleware.Actor())

	if cfg.IdempotencyEnabled {
		ttl := cfg.IdempotencyTTL
		if ttl == 0 {
			ttl = 10 * time.Minute
		}
		store := postgres.NewIdempotencyStore(cfg.TxManager, ttl)
		api.Use(middleware.Idempotency(store))
	}

	registerStockRoutes(api, base, ledgerSvc)
	registerDocumentRoutes(api, base, documentServices{
		goodsReceipt:    goodsReceiptSvc,
		waybill:         waybillSvc,
		purchaseOrder:   purchaseOrderSvc,
		salesOrder:      salesOrderSvc,
		stockAdjustment: adjustmentSvc,
		stockAudit:      stockAuditSvc,
		stockTransfer:   transferSvc,
		invoice:         invoiceSvc,
		fulfillment:     fulfillmentSvc,
	})
	registerAuditRoutes(api, base, cfg.Audit)

	return router
}

// documentServices bundles the document layer for route registration.
type documentServices struct {
	goodsReceipt    *goods_receipt.Service
	waybill         *waybill.Service
	purchaseOrder   *purchase_order.Service
	salesOrder      *sales_order.Service
	stockAdjustment *stock_adjustment.Service
	stockAudit      *stock_audit.Service
	stockTransfer   *stock_transfer.Service
	invoice         *invoice_payment.Service
	fulfillment     *fulfillment.Service
}

// registerStockRoutes registers read-only ledger queries.
func registerStockRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, ledgerSvc *ledger.Service) {
	h := handlers.NewStockHandler(base, ledgerSvc)

	stock := rg.Group("/stock")
	{
		stock.GET("/turnover", h.Turnover)
		stock.GET("/:itemId/current", h.Current)
		stock.GET("/:itemId/batches", h.Batches)
		stock.GET("/:itemId/movements", h.Movements)
	}
}

// registerDocumentRoutes registers all document endpoints.
func registerDocumentRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, svc documentServices) {
	gr := handlers.NewGoodsReceiptHandler(base, svc.goodsReceipt)
	receipts := rg.Group("/goods-receipts")
	{
		receipts.POST("", gr.Create)
		receipts.GET("", gr.List)
		receipts.GET("/:id", gr.GetByID)
	}

	wb := handlers.NewWaybillHandler(base, svc.waybill)
	waybills := rg.Group("/waybills")
	{
		waybills.POST("", wb.Create)
		waybills.GET("", wb.List)
		waybills.GET("/:id", wb.GetByID)
	}

	po := handlers.NewPurchaseOrderHandler(base, svc.purchaseOrder, svc.fulfillment)
	purchaseOrders := rg.Group("/purchase-orders")
	{
		purchaseOrders.POST("", po.Create)
		purchaseOrders.GET("", po.List)
		purchaseOrders.GET("/:id", po.GetByID)
		purchaseOrders.GET("/:id/progress", po.Progress)
	}

	so := handlers.NewSalesOrderHandler(base, svc.salesOrder, svc.fulfillment)
	salesOrders := rg.Group("/sales-orders")
	{
		salesOrders.POST("", so.Create)
		salesOrders.GET("", so.List)
		salesOrders.GET("/:id", so.GetByID)
		salesOrders.GET("/:id/progress", so.Progress)
	}

	adj := handlers.NewStockAdjustmentHandler(base, svc.stockAdjustment)
	adjustments := rg.Group("/stock-adjustments")
	{
		adjustments.POST("", adj.Create)
		adjustments.GET("", adj.List)
		adjustments.GET("/:id", adj.GetByID)
	}

	aud := handlers.NewStockAuditHandler(base, svc.stockAudit)
	audits := rg.Group("/stock-audits")
	{
		audits.POST("", aud.Create)
		audits.GET("", aud.List)
		audits.GET("/:id", aud.GetByID)
	}

	tr := handlers.NewStockTransferHandler(base, svc.stockTransfer)
	transfers := rg.Group("/stock-transfers")
	{
		transfers.POST("", tr.Create)
		transfers.GET("", tr.List)
		transfers.GET("/:id", tr.GetByID)
	}

	inv := handlers.NewInvoiceHandler(base, svc.invoice)
	invoices := rg.Group("/invoices")
	{
		invoices.POST("", inv.Create)
		invoices.GET("", inv.List)
		invoices.GET("/:id", inv.GetByID)
		invoices.POST("/:id/source", inv.AttachSource)
		invoices.DELETE("/:id/source", inv.DetachSource)
		invoices.POST("/:id/payments", inv.ApplyPayment)
	}
}

// registerAuditRoutes registers the audit trail endpoint.
func registerAuditRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, audit *postgres.AuditService) {
	if audit == nil {
		return
	}
	h := handlers.NewAuditHandler(base, audit)
	rg.GET("/audit/:entityType/:id", h.History)
}
