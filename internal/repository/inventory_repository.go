package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ledger-service/internal/database"
	"ledger-service/internal/domain"
)

// InventoryRepository persists InventoryRecords. Lookups that feed a write take row locks
// on drivers that support them.
type InventoryRepository interface {
	// GetOrCreate returns the record for the pair, inserting it at quantity 0 when absent
	GetOrCreate(ctx context.Context, warehouseID, productID string) (*domain.InventoryRecord, error)
	FindByPair(ctx context.Context, warehouseID, productID string) (*domain.InventoryRecord, error)
	FindByID(ctx context.Context, id string) (*domain.InventoryRecord, error)
	// FindCandidates returns the tenant's records for productID holding at least minQuantity,
	// largest first
	FindCandidates(ctx context.Context, tenantID, productID string, minQuantity int) ([]domain.InventoryRecord, error)
	// FindFirstForProduct returns the tenant's record for productID with the lowest id
	FindFirstForProduct(ctx context.Context, tenantID, productID string) (*domain.InventoryRecord, error)
	// ApplyDelta adds delta to the record's quantity unless the result would be negative
	ApplyDelta(ctx context.Context, record *domain.InventoryRecord, delta int) (int, error)
	ListByWarehouse(ctx context.Context, tenantID, warehouseID string) ([]domain.WarehouseStock, error)
	ListAll(ctx context.Context) ([]domain.InventoryRecord, error)
	// FindForTenant returns a record only if its warehouse belongs to tenantID
	FindForTenant(ctx context.Context, tenantID, id string) (*domain.InventoryRecord, error)
}

type sqlInventoryRepository struct {
	q  queryer
	db *database.DB
}

const inventoryColumns = `r.id, r.product_id, r.warehouse_id, r.quantity, r.created_at, r.updated_at`

func (r *sqlInventoryRepository) GetOrCreate(ctx context.Context, warehouseID, productID string) (*domain.InventoryRecord, error) {
	record := domain.NewInventoryRecord(warehouseID, productID)
	query := r.db.InsertIgnore() + ` INTO inventory_records (id, product_id, warehouse_id, quantity, created_at, updated_at)
		VALUES (?, ?, ?, 0, ?, ?)`

	_, err := r.q.ExecContext(ctx, query,
		record.ID, record.ProductID, record.WarehouseID,
		database.FormatTime(record.CreatedAt), database.FormatTime(record.UpdatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create inventory record: %w", err)
	}

	return r.FindByPair(ctx, warehouseID, productID)
}

func (r *sqlInventoryRepository) FindByPair(ctx context.Context, warehouseID, productID string) (*domain.InventoryRecord, error) {
	query := `SELECT ` + inventoryColumns + ` FROM inventory_records r
		WHERE r.warehouse_id = ? AND r.product_id = ?` + r.db.ForUpdate()

	record, err := scanRecord(r.q.QueryRowContext(ctx, query, warehouseID, productID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFound("inventory record", warehouseID+"/"+productID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find inventory record: %w", err)
	}
	return record, nil
}

func (r *sqlInventoryRepository) FindByID(ctx context.Context, id string) (*domain.InventoryRecord, error) {
	query := `SELECT ` + inventoryColumns + ` FROM inventory_records r WHERE r.id = ?` + r.db.ForUpdate()

	record, err := scanRecord(r.q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFound("inventory record", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find inventory record: %w", err)
	}
	return record, nil
}

func (r *sqlInventoryRepository) FindForTenant(ctx context.Context, tenantID, id string) (*domain.InventoryRecord, error) {
	query := `SELECT ` + inventoryColumns + ` FROM inventory_records r
		JOIN warehouses w ON w.id = r.warehouse_id
		WHERE r.id = ? AND w.tenant_id = ?`

	record, err := scanRecord(r.q.QueryRowContext(ctx, query, id, tenantID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFound("inventory record", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find inventory record: %w", err)
	}
	return record, nil
}

// FindCandidates is a plain read. Callers lock the chosen records afterwards in id order.
func (r *sqlInventoryRepository) FindCandidates(ctx context.Context, tenantID, productID string, minQuantity int) ([]domain.InventoryRecord, error) {
	query := `SELECT ` + inventoryColumns + ` FROM inventory_records r
		JOIN warehouses w ON w.id = r.warehouse_id
		WHERE r.product_id = ? AND w.tenant_id = ? AND r.quantity >= ?
		ORDER BY r.quantity DESC, r.id ASC`

	rows, err := r.q.QueryContext(ctx, query, productID, tenantID, minQuantity)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidate records: %w", err)
	}
	defer rows.Close()

	return collectRecords(rows)
}

func (r *sqlInventoryRepository) FindFirstForProduct(ctx context.Context, tenantID, productID string) (*domain.InventoryRecord, error) {
	query := `SELECT ` + inventoryColumns + ` FROM inventory_records r
		JOIN warehouses w ON w.id = r.warehouse_id
		WHERE r.product_id = ? AND w.tenant_id = ?
		ORDER BY r.id ASC
		LIMIT 1`

	record, err := scanRecord(r.q.QueryRowContext(ctx, query, productID, tenantID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFound("inventory record for product", productID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find inventory record: %w", err)
	}
	return record, nil
}

func (r *sqlInventoryRepository) ApplyDelta(ctx context.Context, record *domain.InventoryRecord, delta int) (int, error) {
	now := time.Now().UTC()
	query := `
		UPDATE inventory_records
		SET quantity = quantity + ?, updated_at = ?
		WHERE id = ? AND quantity + ? >= 0
	`

	result, err := r.q.ExecContext(ctx, query, delta, database.FormatTime(now), record.ID, delta)
	if err != nil {
		return 0, fmt.Errorf("failed to update inventory record: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		requested := delta
		if requested < 0 {
			requested = -requested
		}
		return 0, domain.NewInsufficientStock(record.ProductID, requested)
	}

	var quantity int
	if err := r.q.QueryRowContext(ctx, `SELECT quantity FROM inventory_records WHERE id = ?`, record.ID).Scan(&quantity); err != nil {
		return 0, fmt.Errorf("failed to read updated quantity: %w", err)
	}

	record.Quantity = quantity
	record.UpdatedAt = now
	return quantity, nil
}

func (r *sqlInventoryRepository) ListByWarehouse(ctx context.Context, tenantID, warehouseID string) ([]domain.WarehouseStock, error) {
	query := `SELECT ` + inventoryColumns + `, p.sku, p.name, p.price
		FROM inventory_records r
		JOIN products p ON p.id = r.product_id
		JOIN warehouses w ON w.id = r.warehouse_id
		WHERE r.warehouse_id = ? AND w.tenant_id = ?
		ORDER BY p.sku ASC`

	rows, err := r.q.QueryContext(ctx, query, warehouseID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list warehouse inventory: %w", err)
	}
	defer rows.Close()

	stock := make([]domain.WarehouseStock, 0)
	for rows.Next() {
		var s domain.WarehouseStock
		var createdAt, updatedAt string
		if err := rows.Scan(
			&s.ID, &s.ProductID, &s.WarehouseID, &s.Quantity, &createdAt, &updatedAt,
			&s.SKU, &s.ProductName, &s.Price,
		); err != nil {
			return nil, fmt.Errorf("failed to scan warehouse stock: %w", err)
		}
		s.CreatedAt = database.ParseTime(createdAt)
		s.UpdatedAt = database.ParseTime(updatedAt)
		stock = append(stock, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating warehouse stock: %w", err)
	}
	return stock, nil
}

func (r *sqlInventoryRepository) ListAll(ctx context.Context) ([]domain.InventoryRecord, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT `+inventoryColumns+` FROM inventory_records r ORDER BY r.id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory records: %w", err)
	}
	defer rows.Close()

	return collectRecords(rows)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (*domain.InventoryRecord, error) {
	var record domain.InventoryRecord
	var createdAt, updatedAt string

	if err := row.Scan(
		&record.ID, &record.ProductID, &record.WarehouseID, &record.Quantity, &createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}

	record.CreatedAt = database.ParseTime(createdAt)
	record.UpdatedAt = database.ParseTime(updatedAt)
	return &record, nil
}

func collectRecords(rows *sql.Rows) ([]domain.InventoryRecord, error) {
	records := make([]domain.InventoryRecord, 0)
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan inventory record: %w", err)
		}
		records = append(records, *record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating inventory records: %w", err)
	}
	return records, nil
}
