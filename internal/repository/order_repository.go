package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ledger-service/internal/database"
	"ledger-service/internal/domain"
)

// OrderRepository persists orders with their items and optional shipment
type OrderRepository interface {
	// Create inserts the order and all its items
	Create(ctx context.Context, order *domain.Order) error
	// FindByID loads an order with its items and shipment, scoped to tenantID
	FindByID(ctx context.Context, tenantID, id string) (*domain.Order, error)
	// FindForUpdate is FindByID with the order row locked for the rest of the transaction
	FindForUpdate(ctx context.Context, tenantID, id string) (*domain.Order, error)
	UpdateStatus(ctx context.Context, order *domain.Order) error
	SaveShipment(ctx context.Context, shipment *domain.Shipment) error
}

type sqlOrderRepository struct {
	q  queryer
	db *database.DB
}

func (r *sqlOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	query := `
		INSERT INTO orders (id, tenant_id, customer_name, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.q.ExecContext(ctx, query,
		order.ID,
		order.TenantID,
		order.CustomerName,
		string(order.Status),
		database.FormatTime(order.CreatedAt),
		database.FormatTime(order.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (id, order_id, product_id, quantity, warehouse_id)
		VALUES (?, ?, ?, ?, ?)
	`
	for _, item := range order.Items {
		if _, err := r.q.ExecContext(ctx, itemQuery, item.ID, order.ID, item.ProductID, item.Quantity, item.WarehouseID); err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	return nil
}

func (r *sqlOrderRepository) FindByID(ctx context.Context, tenantID, id string) (*domain.Order, error) {
	return r.find(ctx, tenantID, id, "")
}

func (r *sqlOrderRepository) FindForUpdate(ctx context.Context, tenantID, id string) (*domain.Order, error) {
	return r.find(ctx, tenantID, id, r.db.ForUpdate())
}

func (r *sqlOrderRepository) find(ctx context.Context, tenantID, id, lock string) (*domain.Order, error) {
	query := `
		SELECT id, tenant_id, customer_name, status, created_at, updated_at
		FROM orders
		WHERE id = ? AND tenant_id = ?` + lock

	var order domain.Order
	var status, createdAt, updatedAt string
	err := r.q.QueryRowContext(ctx, query, id, tenantID).Scan(
		&order.ID, &order.TenantID, &order.CustomerName, &status, &createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFound("order", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find order: %w", err)
	}

	order.Status = domain.OrderStatus(status)
	order.CreatedAt = database.ParseTime(createdAt)
	order.UpdatedAt = database.ParseTime(updatedAt)

	if order.Items, err = r.items(ctx, order.ID); err != nil {
		return nil, err
	}
	if order.Shipment, err = r.shipment(ctx, order.ID); err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *sqlOrderRepository) items(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, quantity, warehouse_id
		FROM order_items
		WHERE order_id = ?
		ORDER BY id ASC
	`

	rows, err := r.q.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.OrderItem, 0)
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.WarehouseID); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}
	return items, nil
}

func (r *sqlOrderRepository) shipment(ctx context.Context, orderID string) (*domain.Shipment, error) {
	query := `
		SELECT id, order_id, carrier, tracking_number, status, shipped_at
		FROM shipments
		WHERE order_id = ?
	`

	var s domain.Shipment
	var shippedAt sql.NullString
	err := r.q.QueryRowContext(ctx, query, orderID).Scan(
		&s.ID, &s.OrderID, &s.Carrier, &s.TrackingNumber, &s.Status, &shippedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find shipment: %w", err)
	}

	if shippedAt.Valid {
		t := database.ParseTime(shippedAt.String)
		s.ShippedAt = &t
	}
	return &s, nil
}

func (r *sqlOrderRepository) UpdateStatus(ctx context.Context, order *domain.Order) error {
	query := `UPDATE orders SET status = ?, updated_at = ? WHERE id = ? AND tenant_id = ?`

	result, err := r.q.ExecContext(ctx, query,
		string(order.Status), database.FormatTime(order.UpdatedAt), order.ID, order.TenantID,
	)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.NewNotFound("order", order.ID)
	}
	return nil
}

// SaveShipment inserts or replaces the shipment of an order
func (r *sqlOrderRepository) SaveShipment(ctx context.Context, shipment *domain.Shipment) error {
	var shippedAt interface{}
	if shipment.ShippedAt != nil {
		shippedAt = database.FormatTime(*shipment.ShippedAt)
	}

	if _, err := r.q.ExecContext(ctx, `DELETE FROM shipments WHERE order_id = ?`, shipment.OrderID); err != nil {
		return fmt.Errorf("failed to replace shipment: %w", err)
	}

	query := `
		INSERT INTO shipments (id, order_id, carrier, tracking_number, status, shipped_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.q.ExecContext(ctx, query,
		shipment.ID, shipment.OrderID, shipment.Carrier, shipment.TrackingNumber, shipment.Status, shippedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert shipment: %w", err)
	}
	return nil
}
