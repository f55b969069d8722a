package service

import (
	"context"

	"ledger-service/internal/cache"
	"ledger-service/internal/commands"
	"ledger-service/internal/domain"
	"ledger-service/internal/repository"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// StockUpdate is the outcome of a manual movement
type StockUpdate struct {
	Record      domain.InventoryRecord
	Transaction domain.StockTransaction
}

// UpdateStock applies a manual IN, OUT or ADJUSTMENT to a (warehouse, product) pair.
// OUT requires an existing record; IN and ADJUSTMENT create it at zero when absent.
func (s *Service) UpdateStock(ctx context.Context, cmd commands.UpdateStockCommand) (*StockUpdate, error) {
	ctx, span := s.startSpan(ctx, "ledger.update_stock", cmd.TenantID)
	span.SetAttributes(
		attribute.String("warehouse.id", cmd.WarehouseID),
		attribute.String("product.id", cmd.ProductID),
		attribute.String("stock.type", string(cmd.Type)),
		attribute.Int("stock.quantity", cmd.Quantity),
	)
	var err error
	defer func() { endSpan(span, err) }()

	if err = cmd.Validate(); err != nil {
		return nil, err
	}

	var result StockUpdate
	err = s.scope.Execute(ctx, func(repos repository.Repositories) error {
		if _, err := repos.Catalog().FindWarehouse(ctx, cmd.TenantID, cmd.WarehouseID); err != nil {
			return err
		}
		if _, err := repos.Catalog().FindProduct(ctx, cmd.TenantID, cmd.ProductID); err != nil {
			return err
		}

		var record *domain.InventoryRecord
		var err error
		if cmd.Type == domain.TransactionOut {
			record, err = repos.Inventory().FindByPair(ctx, cmd.WarehouseID, cmd.ProductID)
		} else {
			record, err = s.getOrCreate(ctx, repos, cmd.WarehouseID, cmd.ProductID)
		}
		if err != nil {
			return err
		}

		if _, err := s.applyDelta(ctx, repos, record, cmd.Type, cmd.Quantity); err != nil {
			return err
		}

		entry, err := s.append(ctx, repos, record, cmd.Type, cmd.Quantity, cmd.ActorID, cmd.TenantID, cmd.Note)
		if err != nil {
			return err
		}

		result = StockUpdate{Record: *record, Transaction: *entry}
		return nil
	})
	if err != nil {
		s.logger.Debug("Stock update rejected",
			zap.String("tenant_id", cmd.TenantID),
			zap.String("warehouse_id", cmd.WarehouseID),
			zap.String("product_id", cmd.ProductID),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("Stock updated",
		zap.String("record_id", result.Record.ID),
		zap.String("tenant_id", cmd.TenantID),
		zap.String("actor_id", cmd.ActorID),
		zap.String("type", string(cmd.Type)),
		zap.Int("quantity", cmd.Quantity),
		zap.Int("new_quantity", result.Record.Quantity),
	)
	return &result, nil
}

// ListWarehouseInventory returns every record held by a warehouse with its product details
func (s *Service) ListWarehouseInventory(ctx context.Context, query commands.ListWarehouseInventoryQuery) ([]domain.WarehouseStock, error) {
	ctx, span := s.startSpan(ctx, "ledger.list_warehouse", query.TenantID)
	span.SetAttributes(attribute.String("warehouse.id", query.WarehouseID))
	var err error
	defer func() { endSpan(span, err) }()

	if query.WarehouseID == "" {
		err = domain.NewValidationError("id", "warehouse id is required")
		return nil, err
	}

	var stock []domain.WarehouseStock
	err = s.cached(ctx, query.TenantID, cache.WarehouseKey(query.TenantID, query.WarehouseID), &stock, func() error {
		return s.scope.Query(ctx, func(repos repository.Repositories) error {
			if _, err := repos.Catalog().FindWarehouse(ctx, query.TenantID, query.WarehouseID); err != nil {
				return err
			}
			var err error
			stock, err = s.listByWarehouse(ctx, repos, query.TenantID, query.WarehouseID)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return stock, nil
}
