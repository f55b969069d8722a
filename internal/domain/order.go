package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the lifecycle state of an order
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

// Valid reports whether s is a known status
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further change is allowed from s
func (s OrderStatus) Terminal() bool {
	return s == StatusCancelled
}

// Order is a customer order created by the fulfillment orchestrator
type Order struct {
	ID           string
	TenantID     string
	CustomerName string
	Status       OrderStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Items        []OrderItem
	Shipment     *Shipment
}

// NewOrder creates a pending order
func NewOrder(tenantID, customerName string) *Order {
	now := time.Now().UTC()
	return &Order{
		ID:           uuid.New().String(),
		TenantID:     tenantID,
		CustomerName: customerName,
		Status:       StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
		Items:        make([]OrderItem, 0),
	}
}

// AddItem appends a line fulfilled from warehouseID
func (o *Order) AddItem(productID string, quantity int, warehouseID string) OrderItem {
	item := OrderItem{
		ID:          uuid.New().String(),
		OrderID:     o.ID,
		ProductID:   productID,
		Quantity:    quantity,
		WarehouseID: warehouseID,
	}
	o.Items = append(o.Items, item)
	return item
}

// TransitionTo changes the order status. Only the cancelled terminal state is enforced;
// forward progression between the other states is not validated.
func (o *Order) TransitionTo(next OrderStatus) error {
	if !next.Valid() {
		return NewValidationError("status", "unknown order status "+string(next))
	}
	if o.Status.Terminal() {
		return NewInvalidTransition(o.Status, next)
	}
	o.Status = next
	o.UpdatedAt = time.Now().UTC()
	return nil
}

// OrderItem is one order line. WarehouseID records where the stock was taken from.
type OrderItem struct {
	ID          string
	OrderID     string
	ProductID   string
	Quantity    int
	WarehouseID string
}

// Shipment is the optional delivery record attached to an order
type Shipment struct {
	ID             string
	OrderID        string
	Carrier        string
	TrackingNumber string
	Status         string
	ShippedAt      *time.Time
}
