package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType is the kind of movement recorded in the stock journal
type TransactionType string

const (
	TransactionIn         TransactionType = "IN"
	TransactionOut        TransactionType = "OUT"
	TransactionAdjustment TransactionType = "ADJUSTMENT"
)

// Valid reports whether t is one of the known movement types
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionIn, TransactionOut, TransactionAdjustment:
		return true
	}
	return false
}

// SignedDelta returns the quantity change a movement of magnitude q applies to a record.
// ADJUSTMENT carries its own sign and is added as-is.
func (t TransactionType) SignedDelta(q int) int {
	if t == TransactionOut {
		return -q
	}
	return q
}

// Product is a catalog entry owned by a tenant. It is referenced, never mutated, by the ledger.
type Product struct {
	ID       string
	TenantID string
	SKU      string
	Name     string
	Price    decimal.Decimal
}

// Warehouse is a stock location owned by a tenant
type Warehouse struct {
	ID       string
	TenantID string
	Name     string
	Capacity int
}

// InventoryRecord holds the current quantity for one (warehouse, product) pair
type InventoryRecord struct {
	ID          string
	ProductID   string
	WarehouseID string
	Quantity    int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewInventoryRecord creates an empty record for a pair seen for the first time
func NewInventoryRecord(warehouseID, productID string) *InventoryRecord {
	now := time.Now().UTC()
	return &InventoryRecord{
		ID:          uuid.New().String(),
		ProductID:   productID,
		WarehouseID: warehouseID,
		Quantity:    0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// StockTransaction is one append-only journal row
type StockTransaction struct {
	ID                string
	InventoryRecordID string
	Type              TransactionType
	Quantity          int
	Note              string
	ActorID           string
	TenantID          string
	CreatedAt         time.Time
}

// NewStockTransaction builds a journal entry for a movement against record
func NewStockTransaction(record *InventoryRecord, t TransactionType, quantity int, actorID, tenantID, note string) *StockTransaction {
	return &StockTransaction{
		ID:                uuid.New().String(),
		InventoryRecordID: record.ID,
		Type:              t,
		Quantity:          quantity,
		Note:              note,
		ActorID:           actorID,
		TenantID:          tenantID,
		CreatedAt:         time.Now().UTC(),
	}
}

// WarehouseStock is an inventory record joined with its product
type WarehouseStock struct {
	InventoryRecord
	SKU         string
	ProductName string
	Price       decimal.Decimal
}

// JournalSum returns the signed total of a set of journal entries
func JournalSum(entries []StockTransaction) int {
	total := 0
	for _, e := range entries {
		total += e.Type.SignedDelta(e.Quantity)
	}
	return total
}
