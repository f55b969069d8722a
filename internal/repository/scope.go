package repository

import (
	"context"
	"database/sql"
	"fmt"

	"ledger-service/internal/database"

	"go.uber.org/zap"
)

// queryer is satisfied by both *sql.Tx and *sql.DB
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Repositories gives access to every ledger repository bound to the same transaction
type Repositories interface {
	Inventory() InventoryRepository
	Journal() JournalRepository
	Orders() OrderRepository
	Catalog() CatalogRepository
	// AfterCommit registers fn to run once the transaction has committed.
	// Hooks with the same non-empty key are registered only once per transaction.
	AfterCommit(key string, fn func())
}

// TransactionScope runs units of work atomically
type TransactionScope interface {
	// Execute runs fn in one transaction. If fn returns an error nothing is persisted
	// and no after-commit hook runs.
	Execute(ctx context.Context, fn func(repos Repositories) error) error
	// Query runs fn against the pool without a transaction, for read-only work
	Query(ctx context.Context, fn func(repos Repositories) error) error
}

// SQLTransactionScope implements TransactionScope over the shared database handle
type SQLTransactionScope struct {
	db     *database.DB
	logger *zap.Logger
}

func NewTransactionScope(db *database.DB, logger *zap.Logger) *SQLTransactionScope {
	return &SQLTransactionScope{
		db:     db,
		logger: logger,
	}
}

func (s *SQLTransactionScope) Execute(ctx context.Context, fn func(repos Repositories) error) error {
	hooks := newHookList()

	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		return fn(s.bind(tx, hooks))
	})
	if err != nil {
		return err
	}

	hooks.run(s.logger)
	return nil
}

func (s *SQLTransactionScope) Query(ctx context.Context, fn func(repos Repositories) error) error {
	hooks := newHookList()
	if err := fn(s.bind(s.db.Conn(), hooks)); err != nil {
		return err
	}
	hooks.run(s.logger)
	return nil
}

func (s *SQLTransactionScope) bind(q queryer, hooks *hookList) *boundRepositories {
	return &boundRepositories{
		inventory: &sqlInventoryRepository{q: q, db: s.db},
		journal:   &sqlJournalRepository{q: q},
		orders:    &sqlOrderRepository{q: q, db: s.db},
		catalog:   &sqlCatalogRepository{q: q, db: s.db},
		hooks:     hooks,
	}
}

type boundRepositories struct {
	inventory *sqlInventoryRepository
	journal   *sqlJournalRepository
	orders    *sqlOrderRepository
	catalog   *sqlCatalogRepository
	hooks     *hookList
}

func (r *boundRepositories) Inventory() InventoryRepository { return r.inventory }
func (r *boundRepositories) Journal() JournalRepository     { return r.journal }
func (r *boundRepositories) Orders() OrderRepository        { return r.orders }
func (r *boundRepositories) Catalog() CatalogRepository     { return r.catalog }

func (r *boundRepositories) AfterCommit(key string, fn func()) {
	r.hooks.add(key, fn)
}

type hookList struct {
	seen  map[string]struct{}
	hooks []func()
}

func newHookList() *hookList {
	return &hookList{seen: make(map[string]struct{})}
}

func (h *hookList) add(key string, fn func()) {
	if key != "" {
		if _, ok := h.seen[key]; ok {
			return
		}
		h.seen[key] = struct{}{}
	}
	h.hooks = append(h.hooks, fn)
}

// run executes every hook. A panicking hook is logged and does not stop the others:
// the transaction has already committed.
func (h *hookList) run(logger *zap.Logger) {
	for _, fn := range h.hooks {
		func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("After-commit hook panicked", zap.String("panic", fmt.Sprint(r)))
				}
			}()
			fn()
		}()
	}
}
