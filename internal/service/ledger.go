package service

import (
	"context"
	"sort"

	"ledger-service/internal/domain"
	"ledger-service/internal/repository"
)

// getOrCreate returns the record for the pair, creating it at zero on first use
func (s *Service) getOrCreate(ctx context.Context, repos repository.Repositories, warehouseID, productID string) (*domain.InventoryRecord, error) {
	return repos.Inventory().GetOrCreate(ctx, warehouseID, productID)
}

// applyDelta moves record by a movement of type t and magnitude quantity.
// The store refuses any update that would leave the quantity negative.
func (s *Service) applyDelta(ctx context.Context, repos repository.Repositories, record *domain.InventoryRecord, t domain.TransactionType, quantity int) (int, error) {
	return repos.Inventory().ApplyDelta(ctx, record, t.SignedDelta(quantity))
}

func (s *Service) listByWarehouse(ctx context.Context, repos repository.Repositories, tenantID, warehouseID string) ([]domain.WarehouseStock, error) {
	return repos.Inventory().ListByWarehouse(ctx, tenantID, warehouseID)
}

// movement is one planned change to a single inventory record
type movement struct {
	recordID string
	quantity int
}

// sortMovements orders a plan by record id so concurrent transactions lock rows
// in the same sequence
func sortMovements(plan []movement) {
	sort.SliceStable(plan, func(i, j int) bool {
		return plan[i].recordID < plan[j].recordID
	})
}

// execute locks each record in plan order, applies the movement and journals it
func (s *Service) execute(ctx context.Context, repos repository.Repositories, plan []movement, t domain.TransactionType, actorID, tenantID, note string) error {
	for _, m := range plan {
		record, err := repos.Inventory().FindByID(ctx, m.recordID)
		if err != nil {
			return err
		}
		if _, err := s.applyDelta(ctx, repos, record, t, m.quantity); err != nil {
			return err
		}
		if _, err := s.append(ctx, repos, record, t, m.quantity, actorID, tenantID, note); err != nil {
			return err
		}
	}
	return nil
}
