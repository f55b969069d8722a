package service

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"sync"
	"testing"

	"ledger-service/internal/cache"
	"ledger-service/internal/commands"
	"ledger-service/internal/database"
	"ledger-service/internal/domain"
	"ledger-service/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newMySQLFixture connects to LEDGER_TEST_MYSQL_DSN, e.g.
// root:root@tcp(localhost:3306)/ledger_test?parseTime=true&multiStatements=true
// The database is shared between runs, so callers seed uuid-named rows.
func newMySQLFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := os.Getenv("LEDGER_TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("LEDGER_TEST_MYSQL_DSN not set")
	}

	db, err := database.OpenMySQL(dsn, zap.NewNop())
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	scope := repository.NewTransactionScope(db, zap.NewNop())
	notifier := &recordingNotifier{}

	return &fixture{
		db:       db,
		scope:    scope,
		notifier: notifier,
		svc:      New(scope, notifier, cache.NewInMemoryCache(zap.NewNop()), Options{}, zap.NewNop()),
	}
}

func freshIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = uuid.New().String()
	}
	return ids
}

func TestMySQL_ConcurrentOutCannotOverdraw(t *testing.T) {
	f := newMySQLFixture(t)
	w, p := uuid.New().String(), uuid.New().String()
	f.seed(t, tenantID, []string{w}, []string{p})
	initial := f.stockIn(t, w, p, 5)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.UpdateStock(context.Background(), commands.UpdateStockCommand{
				ActorID: actorID, TenantID: tenantID, WarehouseID: w, ProductID: p, Quantity: 3, Type: domain.TransactionOut,
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, rejected int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, domain.ErrInsufficientStock):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, rejected)
	assert.Equal(t, 2, f.quantity(t, w, p))
	assert.Equal(t, 2, domain.JournalSum(f.journal(t, initial.Record.ID)))
}

func TestMySQL_OppositeLineOrderDoesNotDeadlock(t *testing.T) {
	f := newMySQLFixture(t)
	w := uuid.New().String()
	products := freshIDs(2)
	a, b := products[0], products[1]
	f.seed(t, tenantID, []string{w}, products)
	recordA := f.stockIn(t, w, a, 100).Record.ID
	recordB := f.stockIn(t, w, b, 100).Record.ID

	const rounds = 20
	var wg sync.WaitGroup
	errs := make(chan error, 2*rounds)
	for i := 0; i < rounds; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := createOrder(f.svc, commands.OrderLine{ProductID: a, Quantity: 1}, commands.OrderLine{ProductID: b, Quantity: 2})
			errs <- err
		}()
		go func() {
			defer wg.Done()
			_, err := createOrder(f.svc, commands.OrderLine{ProductID: b, Quantity: 2}, commands.OrderLine{ProductID: a, Quantity: 1})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, 100-2*rounds, f.quantity(t, w, a))
	assert.Equal(t, 100-4*rounds, f.quantity(t, w, b))
	assert.Equal(t, 100-2*rounds, domain.JournalSum(f.journal(t, recordA)))
	assert.Equal(t, 100-4*rounds, domain.JournalSum(f.journal(t, recordB)))
}

func TestMySQL_DeadlockIsConflict(t *testing.T) {
	f := newMySQLFixture(t)
	w := uuid.New().String()
	products := freshIDs(2)
	f.seed(t, tenantID, []string{w}, products)
	recordA := f.stockIn(t, w, products[0], 1).Record.ID
	recordB := f.stockIn(t, w, products[1], 1).Record.ID

	lockRow := func(tx *sql.Tx, id string) error {
		var qty int
		return tx.QueryRowContext(context.Background(),
			`SELECT quantity FROM inventory_records WHERE id = ?`+f.db.ForUpdate(), id).Scan(&qty)
	}

	// each transaction takes its first lock, waits for the other, then reaches
	// for the row the other one holds
	crossLock := func(first, second string, held chan<- struct{}, other <-chan struct{}) error {
		return f.db.WithTx(context.Background(), func(tx *sql.Tx) error {
			if err := lockRow(tx, first); err != nil {
				return err
			}
			close(held)
			<-other
			return lockRow(tx, second)
		})
	}

	heldA, heldB := make(chan struct{}), make(chan struct{})
	var wg sync.WaitGroup
	results := make(chan error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		results <- crossLock(recordA, recordB, heldA, heldB)
	}()
	go func() {
		defer wg.Done()
		results <- crossLock(recordB, recordA, heldB, heldA)
	}()
	wg.Wait()
	close(results)

	var conflicts int
	for err := range results {
		if err != nil {
			require.True(t, errors.Is(err, domain.ErrConflict), err.Error())
			conflicts++
		}
	}
	assert.Equal(t, 1, conflicts)
}
