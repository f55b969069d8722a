package commands

import (
	"fmt"
	"strings"

	"ledger-service/internal/domain"
)

// OrderLine is one requested product and quantity
type OrderLine struct {
	ProductID string
	Quantity  int
}

// CreateOrderCommand represents a command to create an order and deduct its stock
type CreateOrderCommand struct {
	ActorID      string
	TenantID     string
	CustomerName string
	Items        []OrderLine
}

func (c CreateOrderCommand) Validate() error {
	if c.TenantID == "" {
		return domain.NewValidationError("tenant_id", "tenant is required")
	}
	if strings.TrimSpace(c.CustomerName) == "" {
		return domain.NewValidationError("customer_name", "customer name is required")
	}
	if len(c.Items) == 0 {
		return domain.NewValidationError("items", "order must contain at least one item")
	}
	for i, line := range c.Items {
		if line.ProductID == "" {
			return domain.NewValidationError(fmt.Sprintf("items[%d].product_id", i), "product is required")
		}
		if line.Quantity <= 0 {
			return domain.NewValidationError(fmt.Sprintf("items[%d].quantity", i), "quantity must be greater than zero")
		}
	}
	return nil
}

// UpdateOrderStatusCommand represents a status change, including cancellation
type UpdateOrderStatusCommand struct {
	OrderID  string
	TenantID string
	ActorID  string
	Status   domain.OrderStatus
}

func (c UpdateOrderStatusCommand) Validate() error {
	if c.OrderID == "" {
		return domain.NewValidationError("id", "order id is required")
	}
	if c.TenantID == "" {
		return domain.NewValidationError("tenant_id", "tenant is required")
	}
	if !c.Status.Valid() {
		return domain.NewValidationError("status", "unknown order status "+string(c.Status))
	}
	return nil
}

// GetOrderQuery fetches an order with items and shipment
type GetOrderQuery struct {
	OrderID  string
	TenantID string
}
