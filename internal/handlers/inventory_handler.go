package handlers

import (
	"net/http"

	"ledger-service/internal/commands"
	"ledger-service/internal/domain"
	"ledger-service/pkg/errors"
	"ledger-service/pkg/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type InventoryHandler struct {
	service LedgerService
	logger  *zap.Logger
}

func NewInventoryHandler(svc LedgerService, logger *zap.Logger) *InventoryHandler {
	return &InventoryHandler{
		service: svc,
		logger:  logger,
	}
}

// UpdateStock handles POST /api/v1/inventory/stock
// @Summary      Record a manual stock movement
// @Description  IN adds stock and creates the record if needed. OUT removes stock from an existing record and never takes it below zero. ADJUSTMENT applies a signed delta.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        X-Request-ID  header    string              false  "Request ID for idempotency (UUID)"
// @Param        request       body      UpdateStockRequest  true   "Movement"
// @Success      200           {object}  StockUpdateResponse
// @Failure      400           {object}  ErrorResponse
// @Failure      401           {object}  ErrorResponse
// @Failure      403           {object}  ErrorResponse
// @Failure      404           {object}  ErrorResponse  "Unknown warehouse, product or record"
// @Failure      409           {object}  ErrorResponse  "Insufficient stock"
// @Router       /inventory/stock [post]
func (h *InventoryHandler) UpdateStock(c *gin.Context) {
	var req UpdateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request", zap.Error(err))
		_ = c.Error(errors.NewInvalidRequest("invalid request body", err.Error()))
		return
	}

	update, err := h.service.UpdateStock(c.Request.Context(), commands.UpdateStockCommand{
		ActorID:     middleware.GetUserID(c),
		TenantID:    middleware.GetTenantID(c),
		WarehouseID: req.WarehouseID,
		ProductID:   req.ProductID,
		Quantity:    req.Quantity,
		Type:        domain.TransactionType(req.Type),
		Note:        req.Note,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	h.logger.Info("Stock updated",
		zap.String("record_id", update.Record.ID),
		zap.String("type", req.Type),
		zap.Int("quantity", req.Quantity),
		zap.Int("new_quantity", update.Record.Quantity),
	)
	c.JSON(http.StatusOK, StockUpdateResponse{
		Record:      toRecordResponse(update.Record),
		Transaction: toTransactionResponse(update.Transaction),
	})
}

// ListWarehouseInventory handles GET /api/v1/inventory/warehouses/:id
// @Summary      List a warehouse's stock
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Warehouse ID"
// @Success      200  {object}  WarehouseInventoryResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /inventory/warehouses/{id} [get]
func (h *InventoryHandler) ListWarehouseInventory(c *gin.Context) {
	warehouseID := c.Param("id")
	stock, err := h.service.ListWarehouseInventory(c.Request.Context(), commands.ListWarehouseInventoryQuery{
		TenantID:    middleware.GetTenantID(c),
		WarehouseID: warehouseID,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	resp := WarehouseInventoryResponse{
		WarehouseID: warehouseID,
		Items:       make([]WarehouseStockResponse, 0, len(stock)),
	}
	for _, s := range stock {
		resp.Items = append(resp.Items, WarehouseStockResponse{
			RecordResponse: toRecordResponse(s.InventoryRecord),
			SKU:            s.SKU,
			ProductName:    s.ProductName,
			Price:          s.Price.StringFixed(2),
		})
	}
	c.JSON(http.StatusOK, resp)
}

// ListRecordTransactions handles GET /api/v1/inventory/records/:id/transactions
// @Summary      List a record's journal
// @Description  Journal entries oldest first. Their signed sum equals the record's quantity.
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Inventory record ID"
// @Success      200  {object}  TransactionsResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /inventory/records/{id}/transactions [get]
func (h *InventoryHandler) ListRecordTransactions(c *gin.Context) {
	recordID := c.Param("id")
	entries, err := h.service.ListRecordTransactions(c.Request.Context(), commands.ListRecordTransactionsQuery{
		TenantID: middleware.GetTenantID(c),
		RecordID: recordID,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	resp := TransactionsResponse{
		RecordID:     recordID,
		Balance:      domain.JournalSum(entries),
		Transactions: make([]TransactionResponse, 0, len(entries)),
	}
	for _, e := range entries {
		resp.Transactions = append(resp.Transactions, toTransactionResponse(e))
	}
	c.JSON(http.StatusOK, resp)
}
