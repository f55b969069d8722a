package service

import (
	"context"

	"ledger-service/internal/commands"
	"ledger-service/internal/domain"
	"ledger-service/internal/events"
	"ledger-service/internal/repository"

	"go.uber.org/zap"
)

// append writes one journal entry in the caller's transaction. ADJUSTMENT entries keep
// their sign so the journal always sums to the record quantity.
func (s *Service) append(ctx context.Context, repos repository.Repositories, record *domain.InventoryRecord, t domain.TransactionType, quantity int, actorID, tenantID, note string) (*domain.StockTransaction, error) {
	entry := domain.NewStockTransaction(record, t, quantity, actorID, tenantID, note)
	if err := repos.Journal().Append(ctx, entry); err != nil {
		return nil, err
	}

	s.notifyChange(repos, tenantID, events.DomainInventory)
	return entry, nil
}

// ListRecordTransactions returns a record's journal, oldest first
func (s *Service) ListRecordTransactions(ctx context.Context, query commands.ListRecordTransactionsQuery) ([]domain.StockTransaction, error) {
	ctx, span := s.startSpan(ctx, "ledger.list_record_transactions", query.TenantID)
	var entries []domain.StockTransaction
	var err error
	defer func() { endSpan(span, err) }()

	if query.RecordID == "" {
		err = domain.NewValidationError("id", "record id is required")
		return nil, err
	}

	err = s.scope.Query(ctx, func(repos repository.Repositories) error {
		if _, err := repos.Inventory().FindForTenant(ctx, query.TenantID, query.RecordID); err != nil {
			return err
		}
		var listErr error
		entries, listErr = repos.Journal().ListByRecord(ctx, query.RecordID)
		return listErr
	})
	if err != nil {
		s.logger.Debug("Failed to list record transactions",
			zap.String("record_id", query.RecordID),
			zap.Error(err),
		)
		return nil, err
	}
	return entries, nil
}
