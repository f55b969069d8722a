package handlers

import (
	"context"
	"net/http"

	"ledger-service/internal/commands"
	"ledger-service/internal/domain"
	"ledger-service/internal/service"
	"ledger-service/pkg/errors"
	"ledger-service/pkg/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// LedgerService is the set of ledger operations exposed over HTTP
type LedgerService interface {
	CreateOrder(ctx context.Context, cmd commands.CreateOrderCommand) (*domain.Order, error)
	GetOrder(ctx context.Context, query commands.GetOrderQuery) (*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, cmd commands.UpdateOrderStatusCommand) (*domain.Order, error)
	UpdateStock(ctx context.Context, cmd commands.UpdateStockCommand) (*service.StockUpdate, error)
	ListWarehouseInventory(ctx context.Context, query commands.ListWarehouseInventoryQuery) ([]domain.WarehouseStock, error)
	ListRecordTransactions(ctx context.Context, query commands.ListRecordTransactionsQuery) ([]domain.StockTransaction, error)
}

type OrderHandler struct {
	service LedgerService
	logger  *zap.Logger
}

func NewOrderHandler(svc LedgerService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		service: svc,
		logger:  logger,
	}
}

// CreateOrder handles POST /api/v1/orders
// @Summary      Create an order
// @Description  Creates a pending order and deducts its stock in one transaction. Each line is taken from the tenant's warehouse holding the most stock of the product; if no single warehouse can cover a line the whole order fails and nothing changes.
// @Description  **Idempotency**: send X-Request-ID to make retries safe. A repeated id replays the stored response.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        X-Request-ID  header    string              false  "Request ID for idempotency (UUID)"
// @Param        request       body      CreateOrderRequest  true   "Order"
// @Success      201           {object}  OrderResponse
// @Failure      400           {object}  ErrorResponse  "Invalid body or validation error"
// @Failure      401           {object}  ErrorResponse
// @Failure      403           {object}  ErrorResponse
// @Failure      409           {object}  ErrorResponse  "Insufficient stock or conflict"
// @Failure      500           {object}  ErrorResponse
// @Router       /orders [post]
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request", zap.Error(err))
		_ = c.Error(errors.NewInvalidRequest("invalid request body", err.Error()))
		return
	}

	cmd := commands.CreateOrderCommand{
		ActorID:      middleware.GetUserID(c),
		TenantID:     middleware.GetTenantID(c),
		CustomerName: req.CustomerName,
		Items:        make([]commands.OrderLine, 0, len(req.Items)),
	}
	for _, item := range req.Items {
		cmd.Items = append(cmd.Items, commands.OrderLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	order, err := h.service.CreateOrder(c.Request.Context(), cmd)
	if err != nil {
		_ = c.Error(err)
		return
	}

	h.logger.Info("Order created",
		zap.String("order_id", order.ID),
		zap.String("tenant_id", order.TenantID),
		zap.Int("items", len(order.Items)),
	)
	c.JSON(http.StatusCreated, toOrderResponse(order))
}

// GetOrder handles GET /api/v1/orders/:id
// @Summary      Get an order
// @Description  Returns the order with its items and shipment, if any
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  OrderResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.service.GetOrder(c.Request.Context(), commands.GetOrderQuery{
		OrderID:  c.Param("id"),
		TenantID: middleware.GetTenantID(c),
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, toOrderResponse(order))
}

// UpdateOrderStatus handles PATCH /api/v1/orders/:id/status
// @Summary      Change an order's status
// @Description  Cancelling returns every line's quantity to inventory. A cancelled order cannot change status again.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        X-Request-ID  header    string                    false  "Request ID for idempotency (UUID)"
// @Param        id            path      string                    true   "Order ID"
// @Param        request       body      UpdateOrderStatusRequest  true   "New status"
// @Success      200           {object}  OrderResponse
// @Failure      400           {object}  ErrorResponse
// @Failure      401           {object}  ErrorResponse
// @Failure      403           {object}  ErrorResponse
// @Failure      404           {object}  ErrorResponse
// @Failure      409           {object}  ErrorResponse  "Order already cancelled"
// @Router       /orders/{id}/status [patch]
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request", zap.Error(err))
		_ = c.Error(errors.NewInvalidRequest("invalid request body", err.Error()))
		return
	}

	order, err := h.service.UpdateOrderStatus(c.Request.Context(), commands.UpdateOrderStatusCommand{
		OrderID:  c.Param("id"),
		TenantID: middleware.GetTenantID(c),
		ActorID:  middleware.GetUserID(c),
		Status:   domain.OrderStatus(req.Status),
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	h.logger.Info("Order status updated",
		zap.String("order_id", order.ID),
		zap.String("status", string(order.Status)),
	)
	c.JSON(http.StatusOK, toOrderResponse(order))
}
