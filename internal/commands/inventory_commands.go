package commands

import (
	"ledger-service/internal/domain"
)

// UpdateStockCommand represents a manual stock movement against a (warehouse, product) pair
type UpdateStockCommand struct {
	ActorID     string
	TenantID    string
	WarehouseID string
	ProductID   string
	Quantity    int
	Type        domain.TransactionType
	Note        string
}

// Validate checks the command before any transaction is opened.
// IN and OUT take a positive magnitude; ADJUSTMENT takes a non-zero signed delta.
func (c UpdateStockCommand) Validate() error {
	if c.TenantID == "" {
		return domain.NewValidationError("tenant_id", "tenant is required")
	}
	if c.WarehouseID == "" {
		return domain.NewValidationError("warehouse_id", "warehouse is required")
	}
	if c.ProductID == "" {
		return domain.NewValidationError("product_id", "product is required")
	}
	if !c.Type.Valid() {
		return domain.NewValidationError("type", "type must be one of IN, OUT, ADJUSTMENT")
	}
	if c.Type == domain.TransactionAdjustment {
		if c.Quantity == 0 {
			return domain.NewValidationError("quantity", "adjustment must be non-zero")
		}
		return nil
	}
	if c.Quantity <= 0 {
		return domain.NewValidationError("quantity", "quantity must be greater than zero")
	}
	return nil
}

// ListWarehouseInventoryQuery lists all records held by a warehouse
type ListWarehouseInventoryQuery struct {
	TenantID    string
	WarehouseID string
}

// ListRecordTransactionsQuery lists the journal of one record
type ListRecordTransactionsQuery struct {
	TenantID string
	RecordID string
}
