package service

import (
	"context"

	"ledger-service/internal/cache"
	"ledger-service/internal/commands"
	"ledger-service/internal/domain"
	"ledger-service/internal/events"
	"ledger-service/internal/repository"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// CreateOrder validates the command, then in one transaction picks a warehouse per line,
// inserts the pending order and deducts stock with one OUT entry per item.
// Nothing is persisted if any line cannot be fulfilled.
func (s *Service) CreateOrder(ctx context.Context, cmd commands.CreateOrderCommand) (*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "orders.create", cmd.TenantID)
	span.SetAttributes(attribute.Int("order.lines", len(cmd.Items)))
	var err error
	defer func() { endSpan(span, err) }()

	if err = cmd.Validate(); err != nil {
		return nil, err
	}

	var order *domain.Order
	err = s.scope.Execute(ctx, func(repos repository.Repositories) error {
		order = domain.NewOrder(cmd.TenantID, cmd.CustomerName)

		plan := make([]movement, 0, len(cmd.Items))
		for _, line := range cmd.Items {
			candidates, err := repos.Inventory().FindCandidates(ctx, cmd.TenantID, line.ProductID, line.Quantity)
			if err != nil {
				return err
			}
			if len(candidates) == 0 {
				return domain.NewInsufficientStock(line.ProductID, line.Quantity)
			}

			chosen := candidates[0]
			order.AddItem(line.ProductID, line.Quantity, chosen.WarehouseID)
			plan = append(plan, movement{recordID: chosen.ID, quantity: line.Quantity})
		}

		if err := repos.Orders().Create(ctx, order); err != nil {
			return err
		}

		sortMovements(plan)
		if err := s.execute(ctx, repos, plan, domain.TransactionOut, cmd.ActorID, cmd.TenantID, "order "+order.ID); err != nil {
			return err
		}

		s.notifyChange(repos, cmd.TenantID, events.DomainOrders)
		return nil
	})
	if err != nil {
		s.logger.Warn("Order creation failed",
			zap.String("tenant_id", cmd.TenantID),
			zap.String("actor_id", cmd.ActorID),
			zap.Error(err),
		)
		return nil, err
	}

	span.SetAttributes(attribute.String("order.id", order.ID))
	s.logger.Info("Order created",
		zap.String("order_id", order.ID),
		zap.String("tenant_id", cmd.TenantID),
		zap.String("actor_id", cmd.ActorID),
		zap.Int("items", len(order.Items)),
	)
	return order, nil
}

// GetOrder returns an order with its items and shipment
func (s *Service) GetOrder(ctx context.Context, query commands.GetOrderQuery) (*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "orders.get", query.TenantID)
	span.SetAttributes(attribute.String("order.id", query.OrderID))
	var err error
	defer func() { endSpan(span, err) }()

	if query.OrderID == "" {
		err = domain.NewValidationError("id", "order id is required")
		return nil, err
	}

	var order domain.Order
	err = s.cached(ctx, query.TenantID, cache.OrderKey(query.TenantID, query.OrderID), &order, func() error {
		return s.scope.Query(ctx, func(repos repository.Repositories) error {
			found, err := repos.Orders().FindByID(ctx, query.TenantID, query.OrderID)
			if err != nil {
				return err
			}
			order = *found
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}
