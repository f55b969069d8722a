package service

import (
	"context"
	"errors"

	"ledger-service/internal/commands"
	"ledger-service/internal/domain"
	"ledger-service/internal/events"
	"ledger-service/internal/repository"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// UpdateOrderStatus changes an order's status. Cancelling restocks every item with an IN
// entry in the same transaction. A cancelled order accepts no further change.
func (s *Service) UpdateOrderStatus(ctx context.Context, cmd commands.UpdateOrderStatusCommand) (*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "orders.update_status", cmd.TenantID)
	span.SetAttributes(
		attribute.String("order.id", cmd.OrderID),
		attribute.String("order.status", string(cmd.Status)),
	)
	var err error
	defer func() { endSpan(span, err) }()

	if err = cmd.Validate(); err != nil {
		return nil, err
	}

	var order *domain.Order
	var previous domain.OrderStatus
	err = s.scope.Execute(ctx, func(repos repository.Repositories) error {
		var err error
		order, err = repos.Orders().FindForUpdate(ctx, cmd.TenantID, cmd.OrderID)
		if err != nil {
			return err
		}
		previous = order.Status

		if order.Status.Terminal() {
			return domain.NewInvalidTransition(order.Status, cmd.Status)
		}

		if cmd.Status == domain.StatusCancelled {
			plan, err := s.restockPlan(ctx, repos, order)
			if err != nil {
				return err
			}
			sortMovements(plan)
			if err := s.execute(ctx, repos, plan, domain.TransactionIn, cmd.ActorID, cmd.TenantID, "order "+order.ID+" cancelled"); err != nil {
				return err
			}
		}

		if err := order.TransitionTo(cmd.Status); err != nil {
			return err
		}
		if err := repos.Orders().UpdateStatus(ctx, order); err != nil {
			return err
		}

		s.notifyChange(repos, cmd.TenantID, events.DomainOrders)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order status updated",
		zap.String("order_id", order.ID),
		zap.String("tenant_id", cmd.TenantID),
		zap.String("actor_id", cmd.ActorID),
		zap.String("from", string(previous)),
		zap.String("to", string(order.Status)),
	)
	return order, nil
}

// restockPlan picks the record each cancelled item returns to
func (s *Service) restockPlan(ctx context.Context, repos repository.Repositories, order *domain.Order) ([]movement, error) {
	plan := make([]movement, 0, len(order.Items))
	for _, item := range order.Items {
		target, err := s.restockTarget(ctx, repos, order.TenantID, item)
		if err != nil {
			return nil, err
		}
		plan = append(plan, movement{recordID: target.ID, quantity: item.Quantity})
	}
	return plan, nil
}

func (s *Service) restockTarget(ctx context.Context, repos repository.Repositories, tenantID string, item domain.OrderItem) (*domain.InventoryRecord, error) {
	if s.opts.CompensateToSource && item.WarehouseID != "" {
		record, err := repos.Inventory().FindByPair(ctx, item.WarehouseID, item.ProductID)
		if err == nil {
			return record, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}
	return repos.Inventory().FindFirstForProduct(ctx, tenantID, item.ProductID)
}
