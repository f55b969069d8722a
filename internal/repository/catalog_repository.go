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

// CatalogRepository reads and seeds products and warehouses. The ledger never mutates them
// during stock or order operations.
type CatalogRepository interface {
	FindProduct(ctx context.Context, tenantID, id string) (*domain.Product, error)
	FindWarehouse(ctx context.Context, tenantID, id string) (*domain.Warehouse, error)
	FindProductBySKU(ctx context.Context, tenantID, sku string) (*domain.Product, error)
	FindWarehouseByName(ctx context.Context, tenantID, name string) (*domain.Warehouse, error)
	UpsertProduct(ctx context.Context, product *domain.Product) error
	UpsertWarehouse(ctx context.Context, warehouse *domain.Warehouse) error
}

type sqlCatalogRepository struct {
	q  queryer
	db *database.DB
}

func (r *sqlCatalogRepository) FindProduct(ctx context.Context, tenantID, id string) (*domain.Product, error) {
	query := `SELECT id, tenant_id, sku, name, price FROM products WHERE id = ? AND tenant_id = ?`

	var p domain.Product
	err := r.q.QueryRowContext(ctx, query, id, tenantID).Scan(&p.ID, &p.TenantID, &p.SKU, &p.Name, &p.Price)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFound("product", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	return &p, nil
}

func (r *sqlCatalogRepository) FindProductBySKU(ctx context.Context, tenantID, sku string) (*domain.Product, error) {
	query := `SELECT id, tenant_id, sku, name, price FROM products WHERE tenant_id = ? AND sku = ?`

	var p domain.Product
	err := r.q.QueryRowContext(ctx, query, tenantID, sku).Scan(&p.ID, &p.TenantID, &p.SKU, &p.Name, &p.Price)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFound("product", sku)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find product by sku: %w", err)
	}
	return &p, nil
}

// FindWarehouseByName returns the oldest warehouse with that name
func (r *sqlCatalogRepository) FindWarehouseByName(ctx context.Context, tenantID, name string) (*domain.Warehouse, error) {
	query := `SELECT id, tenant_id, name, capacity FROM warehouses
		WHERE tenant_id = ? AND name = ?
		ORDER BY created_at ASC, id ASC
		LIMIT 1`

	var w domain.Warehouse
	err := r.q.QueryRowContext(ctx, query, tenantID, name).Scan(&w.ID, &w.TenantID, &w.Name, &w.Capacity)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFound("warehouse", name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find warehouse by name: %w", err)
	}
	return &w, nil
}

func (r *sqlCatalogRepository) FindWarehouse(ctx context.Context, tenantID, id string) (*domain.Warehouse, error) {
	query := `SELECT id, tenant_id, name, capacity FROM warehouses WHERE id = ? AND tenant_id = ?`

	var w domain.Warehouse
	err := r.q.QueryRowContext(ctx, query, id, tenantID).Scan(&w.ID, &w.TenantID, &w.Name, &w.Capacity)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFound("warehouse", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find warehouse: %w", err)
	}
	return &w, nil
}

func (r *sqlCatalogRepository) UpsertProduct(ctx context.Context, product *domain.Product) error {
	now := database.FormatTime(time.Now())

	var query string
	if r.db.Dialect() == database.DialectMySQL {
		query = `
			INSERT INTO products (id, tenant_id, sku, name, price, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON DUPLICATE KEY UPDATE sku = VALUES(sku), name = VALUES(name), price = VALUES(price)
		`
	} else {
		query = `
			INSERT INTO products (id, tenant_id, sku, name, price, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET sku = excluded.sku, name = excluded.name, price = excluded.price
		`
	}

	_, err := r.q.ExecContext(ctx, query,
		product.ID, product.TenantID, product.SKU, product.Name, product.Price.String(), now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert product: %w", err)
	}
	return nil
}

func (r *sqlCatalogRepository) UpsertWarehouse(ctx context.Context, warehouse *domain.Warehouse) error {
	now := database.FormatTime(time.Now())

	var query string
	if r.db.Dialect() == database.DialectMySQL {
		query = `
			INSERT INTO warehouses (id, tenant_id, name, capacity, created_at)
			VALUES (?, ?, ?, ?, ?)
			ON DUPLICATE KEY UPDATE name = VALUES(name), capacity = VALUES(capacity)
		`
	} else {
		query = `
			INSERT INTO warehouses (id, tenant_id, name, capacity, created_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET name = excluded.name, capacity = excluded.capacity
		`
	}

	_, err := r.q.ExecContext(ctx, query,
		warehouse.ID, warehouse.TenantID, warehouse.Name, warehouse.Capacity, now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert warehouse: %w", err)
	}
	return nil
}
