package handlers

import (
	"time"

	"ledger-service/internal/domain"
	"ledger-service/internal/events"
	"ledger-service/internal/service"
)

// ErrorResponse represents an error response
// @Description Error response with code, message and details
type ErrorResponse struct {
	// Error code
	Error string `json:"error" example:"InsufficientStock"`
	// Human-readable message
	Message string `json:"message" example:"insufficient stock available"`
	// Additional details
	Details string `json:"details" example:"product 6f1c2a54-1b7e-4b0e-9a1d-2f1d1c9b8a11 requested 5"`
}

// OrderItemRequest is one requested order line
type OrderItemRequest struct {
	ProductID string `json:"product_id" binding:"required" example:"6f1c2a54-1b7e-4b0e-9a1d-2f1d1c9b8a11"`
	Quantity  int    `json:"quantity" binding:"required" example:"3"`
}

// CreateOrderRequest represents the request body for creating an order
// @Description Request to create an order. Each line is fulfilled from the warehouse holding the most stock.
type CreateOrderRequest struct {
	CustomerName string             `json:"customer_name" binding:"required" example:"ACME Corp"`
	Items        []OrderItemRequest `json:"items" binding:"required,dive"`
}

// UpdateOrderStatusRequest represents the request body for a status change
// @Description Moving to cancelled returns every line's stock to inventory
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required" example:"shipped"`
}

// UpdateStockRequest represents a manual stock movement
// @Description IN and OUT take a positive quantity; ADJUSTMENT takes a signed, non-zero delta
type UpdateStockRequest struct {
	WarehouseID string `json:"warehouse_id" binding:"required" example:"a3b1f0de-7c55-4a57-8f34-0c9d2b6e1f00"`
	ProductID   string `json:"product_id" binding:"required" example:"6f1c2a54-1b7e-4b0e-9a1d-2f1d1c9b8a11"`
	Quantity    int    `json:"quantity" example:"10"`
	Type        string `json:"type" binding:"required" example:"IN"`
	Note        string `json:"note" example:"cycle count correction"`
}

// OrderItemResponse is one order line
type OrderItemResponse struct {
	ID          string `json:"id"`
	ProductID   string `json:"product_id"`
	Quantity    int    `json:"quantity" example:"3"`
	WarehouseID string `json:"warehouse_id"`
}

// ShipmentResponse is the delivery record of an order
type ShipmentResponse struct {
	ID             string     `json:"id"`
	Carrier        string     `json:"carrier" example:"DHL"`
	TrackingNumber string     `json:"tracking_number" example:"JD014600006281230514"`
	Status         string     `json:"status" example:"in_transit"`
	ShippedAt      *time.Time `json:"shipped_at,omitempty"`
}

// OrderResponse is an order with its items and optional shipment
type OrderResponse struct {
	ID           string              `json:"id"`
	CustomerName string              `json:"customer_name" example:"ACME Corp"`
	Status       string              `json:"status" example:"pending"`
	Items        []OrderItemResponse `json:"items"`
	Shipment     *ShipmentResponse   `json:"shipment,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// RecordResponse is an inventory record
type RecordResponse struct {
	ID          string    `json:"id"`
	WarehouseID string    `json:"warehouse_id"`
	ProductID   string    `json:"product_id"`
	Quantity    int       `json:"quantity" example:"42"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TransactionResponse is a stock journal entry
type TransactionResponse struct {
	ID        string    `json:"id"`
	RecordID  string    `json:"record_id"`
	Type      string    `json:"type" example:"OUT"`
	Quantity  int       `json:"quantity" example:"3"`
	Note      string    `json:"note"`
	ActorID   string    `json:"actor_id"`
	CreatedAt time.Time `json:"created_at"`
}

// StockUpdateResponse is the outcome of a manual movement
type StockUpdateResponse struct {
	Record      RecordResponse      `json:"record"`
	Transaction TransactionResponse `json:"transaction"`
}

// WarehouseStockResponse is a record joined with its product
type WarehouseStockResponse struct {
	RecordResponse
	SKU         string `json:"sku" example:"SKU-001"`
	ProductName string `json:"product_name" example:"Laptop Dell XPS 15"`
	Price       string `json:"price" example:"1299.99"`
}

// WarehouseInventoryResponse lists a warehouse's stock
type WarehouseInventoryResponse struct {
	WarehouseID string                   `json:"warehouse_id"`
	Items       []WarehouseStockResponse `json:"items"`
}

// TransactionsResponse lists a record's journal, oldest first
type TransactionsResponse struct {
	RecordID     string                `json:"record_id"`
	Balance      int                   `json:"balance"`
	Transactions []TransactionResponse `json:"transactions"`
}

// StatsResponse is the monitoring snapshot
type StatsResponse struct {
	Status        string               `json:"status" example:"ok"`
	Tables        map[string]int       `json:"tables"`
	OpenConns     int                  `json:"open_connections"`
	InUseConns    int                  `json:"in_use_connections"`
	Notifications events.NotifierStats `json:"notifications"`
}

// DatabaseStatusResponse reports database connectivity
type DatabaseStatusResponse struct {
	Status    string `json:"status" example:"ok"`
	Connected bool   `json:"connected"`
	Driver    string `json:"driver" example:"sqlite3"`
}

// ReconcileResponse lists records whose quantity disagrees with their journal
type ReconcileResponse struct {
	Consistent bool            `json:"consistent"`
	Drift      []service.Drift `json:"drift"`
}

// HealthResponse is the liveness payload
type HealthResponse struct {
	Status  string `json:"status" example:"ok"`
	Service string `json:"service" example:"ledger-service"`
}

func toOrderResponse(o *domain.Order) OrderResponse {
	resp := OrderResponse{
		ID:           o.ID,
		CustomerName: o.CustomerName,
		Status:       string(o.Status),
		Items:        make([]OrderItemResponse, 0, len(o.Items)),
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
	for _, item := range o.Items {
		resp.Items = append(resp.Items, OrderItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			Quantity:    item.Quantity,
			WarehouseID: item.WarehouseID,
		})
	}
	if o.Shipment != nil {
		resp.Shipment = &ShipmentResponse{
			ID:             o.Shipment.ID,
			Carrier:        o.Shipment.Carrier,
			TrackingNumber: o.Shipment.TrackingNumber,
			Status:         o.Shipment.Status,
			ShippedAt:      o.Shipment.ShippedAt,
		}
	}
	return resp
}

func toRecordResponse(r domain.InventoryRecord) RecordResponse {
	return RecordResponse{
		ID:          r.ID,
		WarehouseID: r.WarehouseID,
		ProductID:   r.ProductID,
		Quantity:    r.Quantity,
		UpdatedAt:   r.UpdatedAt,
	}
}

func toTransactionResponse(t domain.StockTransaction) TransactionResponse {
	return TransactionResponse{
		ID:        t.ID,
		RecordID:  t.InventoryRecordID,
		Type:      string(t.Type),
		Quantity:  t.Quantity,
		Note:      t.Note,
		ActorID:   t.ActorID,
		CreatedAt: t.CreatedAt,
	}
}
