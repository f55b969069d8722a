package repository

import (
	"context"
	"fmt"

	"ledger-service/internal/database"
	"ledger-service/internal/domain"
)

// JournalRepository appends and reads stock transactions. Entries are never updated or deleted.
type JournalRepository interface {
	Append(ctx context.Context, entry *domain.StockTransaction) error
	ListByRecord(ctx context.Context, recordID string) ([]domain.StockTransaction, error)
	// SumByRecord returns the signed journal total per inventory record id
	SumByRecord(ctx context.Context) (map[string]int, error)
}

type sqlJournalRepository struct {
	q queryer
}

func (r *sqlJournalRepository) Append(ctx context.Context, entry *domain.StockTransaction) error {
	query := `
		INSERT INTO stock_transactions (id, inventory_record_id, type, quantity, note, actor_id, tenant_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.q.ExecContext(ctx, query,
		entry.ID,
		entry.InventoryRecordID,
		string(entry.Type),
		entry.Quantity,
		entry.Note,
		entry.ActorID,
		entry.TenantID,
		database.FormatTime(entry.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to append stock transaction: %w", err)
	}
	return nil
}

func (r *sqlJournalRepository) ListByRecord(ctx context.Context, recordID string) ([]domain.StockTransaction, error) {
	query := `
		SELECT id, inventory_record_id, type, quantity, note, actor_id, tenant_id, created_at
		FROM stock_transactions
		WHERE inventory_record_id = ?
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.q.QueryContext(ctx, query, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock transactions: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.StockTransaction, 0)
	for rows.Next() {
		var e domain.StockTransaction
		var txType, createdAt string
		if err := rows.Scan(&e.ID, &e.InventoryRecordID, &txType, &e.Quantity, &e.Note, &e.ActorID, &e.TenantID, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan stock transaction: %w", err)
		}
		e.Type = domain.TransactionType(txType)
		e.CreatedAt = database.ParseTime(createdAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stock transactions: %w", err)
	}
	return entries, nil
}

func (r *sqlJournalRepository) SumByRecord(ctx context.Context) (map[string]int, error) {
	query := `
		SELECT inventory_record_id,
			COALESCE(SUM(CASE WHEN type = 'OUT' THEN -quantity ELSE quantity END), 0)
		FROM stock_transactions
		GROUP BY inventory_record_id
	`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to sum stock transactions: %w", err)
	}
	defer rows.Close()

	sums := make(map[string]int)
	for rows.Next() {
		var recordID string
		var sum int64
		if err := rows.Scan(&recordID, &sum); err != nil {
			return nil, fmt.Errorf("failed to scan journal sum: %w", err)
		}
		sums[recordID] = int(sum)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating journal sums: %w", err)
	}
	return sums, nil
}
