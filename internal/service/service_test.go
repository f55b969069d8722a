package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"ledger-service/internal/cache"
	"ledger-service/internal/commands"
	"ledger-service/internal/database"
	"ledger-service/internal/domain"
	"ledger-service/internal/events"
	"ledger-service/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	tenantID = "tenant-1"
	actorID  = "user-1"
)

// recordingNotifier captures notifications synchronously
type recordingNotifier struct {
	mu     sync.Mutex
	events []events.DataChangedEvent
}

func (n *recordingNotifier) NotifyDataChange(tenantID, domain string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, events.DataChangedEvent{TenantID: tenantID, Domain: domain})
}

func (n *recordingNotifier) count(domain string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	total := 0
	for _, e := range n.events {
		if e.Domain == domain {
			total++
		}
	}
	return total
}

type fixture struct {
	db       *database.DB
	scope    *repository.SQLTransactionScope
	notifier *recordingNotifier
	svc      *Service
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()

	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "ledger.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	scope := repository.NewTransactionScope(db, zap.NewNop())
	notifier := &recordingNotifier{}

	return &fixture{
		db:       db,
		scope:    scope,
		notifier: notifier,
		svc:      New(scope, notifier, cache.NewInMemoryCache(zap.NewNop()), opts, zap.NewNop()),
	}
}

func (f *fixture) seed(t *testing.T, tenant string, warehouses []string, products []string) {
	t.Helper()
	err := f.scope.Execute(context.Background(), func(repos repository.Repositories) error {
		for _, w := range warehouses {
			if err := repos.Catalog().UpsertWarehouse(context.Background(), &domain.Warehouse{ID: w, TenantID: tenant, Name: w, Capacity: 1000}); err != nil {
				return err
			}
		}
		for _, p := range products {
			if err := repos.Catalog().UpsertProduct(context.Background(), &domain.Product{ID: p, TenantID: tenant, SKU: "SKU-" + p, Name: p, Price: decimal.RequireFromString("9.99")}); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
}

func (f *fixture) stockIn(t *testing.T, warehouseID, productID string, qty int) *StockUpdate {
	t.Helper()
	result, err := f.svc.UpdateStock(context.Background(), commands.UpdateStockCommand{
		ActorID: actorID, TenantID: tenantID, WarehouseID: warehouseID, ProductID: productID,
		Quantity: qty, Type: domain.TransactionIn,
	})
	require.NoError(t, err)
	return result
}

func (f *fixture) quantity(t *testing.T, warehouseID, productID string) int {
	t.Helper()
	var qty int
	err := f.scope.Query(context.Background(), func(repos repository.Repositories) error {
		record, err := repos.Inventory().FindByPair(context.Background(), warehouseID, productID)
		if err != nil {
			return err
		}
		qty = record.Quantity
		return nil
	})
	require.NoError(t, err)
	return qty
}

func (f *fixture) journal(t *testing.T, recordID string) []domain.StockTransaction {
	t.Helper()
	entries, err := f.svc.ListRecordTransactions(context.Background(), commands.ListRecordTransactionsQuery{TenantID: tenantID, RecordID: recordID})
	require.NoError(t, err)
	return entries
}

func (f *fixture) assertConsistent(t *testing.T) {
	t.Helper()
	drifts, err := NewReconciler(f.scope, zap.NewNop()).Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, drifts)
}

func (f *fixture) count(t *testing.T, table string) int {
	t.Helper()
	n, err := f.db.CountRows(context.Background(), table)
	require.NoError(t, err)
	return n
}

func createOrder(svc *Service, items ...commands.OrderLine) (*domain.Order, error) {
	return svc.CreateOrder(context.Background(), commands.CreateOrderCommand{
		ActorID: actorID, TenantID: tenantID, CustomerName: "Ada", Items: items,
	})
}

func TestScenarios(t *testing.T) {
	f := newFixture(t, Options{})
	f.seed(t, tenantID, []string{"W"}, []string{"P"})
	initial := f.stockIn(t, "W", "P", 100)
	recordID := initial.Record.ID

	// A: manual IN
	result := f.stockIn(t, "W", "P", 50)
	assert.Equal(t, 150, result.Record.Quantity)
	assert.Equal(t, domain.TransactionIn, result.Transaction.Type)
	assert.Equal(t, 50, result.Transaction.Quantity)

	// B: order from the only warehouse
	order, err := createOrder(f.svc, commands.OrderLine{ProductID: "P", Quantity: 30})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, order.Status)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "W", order.Items[0].WarehouseID)
	assert.Equal(t, 120, f.quantity(t, "W", "P"))

	entries := f.journal(t, recordID)
	last := entries[len(entries)-1]
	assert.Equal(t, domain.TransactionOut, last.Type)
	assert.Equal(t, 30, last.Quantity)
	assert.Equal(t, "order "+order.ID, last.Note)

	// C: cancel restocks
	cancelled, err := f.svc.UpdateOrderStatus(context.Background(), commands.UpdateOrderStatusCommand{
		OrderID: order.ID, TenantID: tenantID, ActorID: actorID, Status: domain.StatusCancelled,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, cancelled.Status)
	assert.Equal(t, 150, f.quantity(t, "W", "P"))

	entries = f.journal(t, recordID)
	last = entries[len(entries)-1]
	assert.Equal(t, domain.TransactionIn, last.Type)
	assert.Equal(t, 30, last.Quantity)
	assert.Equal(t, "order "+order.ID+" cancelled", last.Note)

	// D: no single warehouse can cover the line
	ordersBefore := f.count(t, "orders")
	_, err = createOrder(f.svc, commands.OrderLine{ProductID: "P", Quantity: 200})
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	assert.Equal(t, ordersBefore, f.count(t, "orders"))
	assert.Equal(t, 1, f.count(t, "order_items"))
	assert.Equal(t, 150, f.quantity(t, "W", "P"))

	// E: cancelled is terminal
	journalBefore := len(f.journal(t, recordID))
	_, err = f.svc.UpdateOrderStatus(context.Background(), commands.UpdateOrderStatusCommand{
		OrderID: order.ID, TenantID: tenantID, ActorID: actorID, Status: domain.StatusProcessing,
	})
	assert.True(t, errors.Is(err, domain.ErrInvalidTransition))

	fetched, err := f.svc.GetOrder(context.Background(), commands.GetOrderQuery{OrderID: order.ID, TenantID: tenantID})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, fetched.Status)
	assert.Len(t, f.journal(t, recordID), journalBefore)

	f.assertConsistent(t)
}

func TestCreateOrder_RoundTrip(t *testing.T) {
	f := newFixture(t, Options{})
	f.seed(t, tenantID, []string{"W1", "W2"}, []string{"P1", "P2"})
	f.stockIn(t, "W1", "P1", 10)
	f.stockIn(t, "W2", "P1", 40)
	f.stockIn(t, "W1", "P2", 5)

	order, err := createOrder(f.svc,
		commands.OrderLine{ProductID: "P1", Quantity: 7},
		commands.OrderLine{ProductID: "P2", Quantity: 5},
	)
	require.NoError(t, err)

	// Most stocked warehouse wins
	assert.Equal(t, 33, f.quantity(t, "W2", "P1"))
	assert.Equal(t, 10, f.quantity(t, "W1", "P1"))
	assert.Equal(t, 0, f.quantity(t, "W1", "P2"))

	_, err = f.svc.UpdateOrderStatus(context.Background(), commands.UpdateOrderStatusCommand{
		OrderID: order.ID, TenantID: tenantID, ActorID: actorID, Status: domain.StatusCancelled,
	})
	require.NoError(t, err)

	assert.Equal(t, 50, f.quantity(t, "W1", "P1")+f.quantity(t, "W2", "P1"))
	assert.Equal(t, 5, f.quantity(t, "W1", "P2"))
	// 3 seeding INs, 2 OUTs, 2 restocking INs
	assert.Equal(t, 7, f.count(t, "stock_transactions"))
	f.assertConsistent(t)
}

func TestCancel_DefaultTargetIsLowestRecord(t *testing.T) {
	f := newFixture(t, Options{})
	f.seed(t, tenantID, []string{"W1", "W2"}, []string{"P"})
	first := f.stockIn(t, "W1", "P", 1)
	second := f.stockIn(t, "W2", "P", 20)

	order, err := createOrder(f.svc, commands.OrderLine{ProductID: "P", Quantity: 10})
	require.NoError(t, err)
	assert.Equal(t, "W2", order.Items[0].WarehouseID)

	_, err = f.svc.UpdateOrderStatus(context.Background(), commands.UpdateOrderStatusCommand{
		OrderID: order.ID, TenantID: tenantID, ActorID: actorID, Status: domain.StatusCancelled,
	})
	require.NoError(t, err)

	lowest, other := first.Record, second.Record
	if other.ID < lowest.ID {
		lowest, other = other, lowest
	}
	expected := map[string]int{"W1": 1, "W2": 10}
	expected[lowest.WarehouseID] += 10

	assert.Equal(t, expected["W1"], f.quantity(t, "W1", "P"))
	assert.Equal(t, expected["W2"], f.quantity(t, "W2", "P"))
	f.assertConsistent(t)
}

func TestCancel_CompensateToSource(t *testing.T) {
	f := newFixture(t, Options{CompensateToSource: true})
	f.seed(t, tenantID, []string{"W1", "W2"}, []string{"P"})
	f.stockIn(t, "W1", "P", 1)
	f.stockIn(t, "W2", "P", 20)

	order, err := createOrder(f.svc, commands.OrderLine{ProductID: "P", Quantity: 10})
	require.NoError(t, err)

	_, err = f.svc.UpdateOrderStatus(context.Background(), commands.UpdateOrderStatusCommand{
		OrderID: order.ID, TenantID: tenantID, ActorID: actorID, Status: domain.StatusCancelled,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, f.quantity(t, "W1", "P"))
	assert.Equal(t, 20, f.quantity(t, "W2", "P"))
}

func TestCreateOrder_SameRecordTwiceCannotOverdraw(t *testing.T) {
	f := newFixture(t, Options{})
	f.seed(t, tenantID, []string{"W"}, []string{"P"})
	f.stockIn(t, "W", "P", 5)

	_, err := createOrder(f.svc,
		commands.OrderLine{ProductID: "P", Quantity: 3},
		commands.OrderLine{ProductID: "P", Quantity: 3},
	)

	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	assert.Equal(t, 5, f.quantity(t, "W", "P"))
	assert.Equal(t, 0, f.count(t, "orders"))
	assert.Equal(t, 0, f.count(t, "order_items"))
	assert.Equal(t, 1, f.count(t, "stock_transactions"))
}

func TestCreateOrder_Validation(t *testing.T) {
	f := newFixture(t, Options{})

	_, err := createOrder(f.svc)
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = createOrder(f.svc, commands.OrderLine{ProductID: "P", Quantity: 0})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = f.svc.CreateOrder(context.Background(), commands.CreateOrderCommand{
		TenantID: tenantID, CustomerName: "  ", Items: []commands.OrderLine{{ProductID: "P", Quantity: 1}},
	})
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestCreateOrder_UnknownProductIsInsufficientStock(t *testing.T) {
	f := newFixture(t, Options{})

	_, err := createOrder(f.svc, commands.OrderLine{ProductID: "ghost", Quantity: 1})

	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
}

func TestCreateOrder_TenantIsolation(t *testing.T) {
	f := newFixture(t, Options{})
	f.seed(t, "tenant-2", []string{"W-other"}, []string{"P"})
	_, err := f.svc.UpdateStock(context.Background(), commands.UpdateStockCommand{
		ActorID: actorID, TenantID: "tenant-2", WarehouseID: "W-other", ProductID: "P", Quantity: 100, Type: domain.TransactionIn,
	})
	require.NoError(t, err)

	_, err = createOrder(f.svc, commands.OrderLine{ProductID: "P", Quantity: 1})

	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
}

func TestUpdateStock_Rules(t *testing.T) {
	f := newFixture(t, Options{})
	f.seed(t, tenantID, []string{"W"}, []string{"P"})
	ctx := context.Background()

	cmd := func(t domain.TransactionType, qty int) commands.UpdateStockCommand {
		return commands.UpdateStockCommand{ActorID: actorID, TenantID: tenantID, WarehouseID: "W", ProductID: "P", Quantity: qty, Type: t}
	}

	// OUT on a missing record
	_, err := f.svc.UpdateStock(ctx, cmd(domain.TransactionOut, 1))
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	// ADJUSTMENT creates the record and applies a signed delta
	result, err := f.svc.UpdateStock(ctx, cmd(domain.TransactionAdjustment, 12))
	require.NoError(t, err)
	assert.Equal(t, 12, result.Record.Quantity)

	result, err = f.svc.UpdateStock(ctx, cmd(domain.TransactionAdjustment, -2))
	require.NoError(t, err)
	assert.Equal(t, 10, result.Record.Quantity)
	assert.Equal(t, -2, result.Transaction.Quantity)

	_, err = f.svc.UpdateStock(ctx, cmd(domain.TransactionAdjustment, -11))
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	_, err = f.svc.UpdateStock(ctx, cmd(domain.TransactionOut, 11))
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	result, err = f.svc.UpdateStock(ctx, cmd(domain.TransactionOut, 10))
	require.NoError(t, err)
	assert.Equal(t, 0, result.Record.Quantity)

	_, err = f.svc.UpdateStock(ctx, cmd(domain.TransactionAdjustment, 0))
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = f.svc.UpdateStock(ctx, cmd("MOVE", 1))
	assert.True(t, errors.Is(err, domain.ErrValidation))

	assert.Equal(t, 3, len(f.journal(t, result.Record.ID)))
	assert.Equal(t, 0, domain.JournalSum(f.journal(t, result.Record.ID)))
	f.assertConsistent(t)
}

func TestUpdateStock_ForeignWarehouseOrProduct(t *testing.T) {
	f := newFixture(t, Options{})
	f.seed(t, tenantID, []string{"W"}, []string{"P"})
	f.seed(t, "tenant-2", []string{"W2"}, []string{"P2"})

	_, err := f.svc.UpdateStock(context.Background(), commands.UpdateStockCommand{
		TenantID: tenantID, WarehouseID: "W2", ProductID: "P", Quantity: 1, Type: domain.TransactionIn,
	})
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	_, err = f.svc.UpdateStock(context.Background(), commands.UpdateStockCommand{
		TenantID: tenantID, WarehouseID: "W", ProductID: "P2", Quantity: 1, Type: domain.TransactionIn,
	})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Equal(t, 0, f.count(t, "inventory_records"))
}

func TestConcurrentOutCannotOverdraw(t *testing.T) {
	f := newFixture(t, Options{})
	f.seed(t, tenantID, []string{"W"}, []string{"P"})
	f.stockIn(t, "W", "P", 5)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.UpdateStock(context.Background(), commands.UpdateStockCommand{
				ActorID: actorID, TenantID: tenantID, WarehouseID: "W", ProductID: "P", Quantity: 3, Type: domain.TransactionOut,
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
	assert.Equal(t, 2, f.quantity(t, "W", "P"))
	f.assertConsistent(t)
}

func TestConcurrentOrdersNeverGoNegative(t *testing.T) {
	f := newFixture(t, Options{})
	f.seed(t, tenantID, []string{"W1", "W2"}, []string{"P"})
	f.stockIn(t, "W1", "P", 10)
	f.stockIn(t, "W2", "P", 10)

	var wg sync.WaitGroup
	var mu sync.Mutex
	created := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := createOrder(f.svc, commands.OrderLine{ProductID: "P", Quantity: 3}); err == nil {
				mu.Lock()
				created++
				mu.Unlock()
			} else {
				assert.True(t, errors.Is(err, domain.ErrInsufficientStock), err.Error())
			}
		}()
	}
	wg.Wait()

	total := f.quantity(t, "W1", "P") + f.quantity(t, "W2", "P")
	assert.Equal(t, 20-3*created, total)
	assert.GreaterOrEqual(t, f.quantity(t, "W1", "P"), 0)
	assert.GreaterOrEqual(t, f.quantity(t, "W2", "P"), 0)
	assert.Equal(t, created, f.count(t, "orders"))
	f.assertConsistent(t)
}

func TestNotifications_AfterCommitOnly(t *testing.T) {
	f := newFixture(t, Options{})
	f.seed(t, tenantID, []string{"W"}, []string{"P"})

	f.stockIn(t, "W", "P", 5)
	assert.Equal(t, 1, f.notifier.count(events.DomainInventory))

	_, err := createOrder(f.svc, commands.OrderLine{ProductID: "P", Quantity: 50})
	require.Error(t, err)
	assert.Equal(t, 1, f.notifier.count(events.DomainInventory))
	assert.Equal(t, 0, f.notifier.count(events.DomainOrders))

	_, err = createOrder(f.svc,
		commands.OrderLine{ProductID: "P", Quantity: 1},
		commands.OrderLine{ProductID: "P", Quantity: 1},
	)
	require.NoError(t, err)
	// Two OUT entries, one deduplicated inventory notification
	assert.Equal(t, 2, f.notifier.count(events.DomainInventory))
	assert.Equal(t, 1, f.notifier.count(events.DomainOrders))
}

func TestListWarehouseInventory_CacheInvalidatedOnWrite(t *testing.T) {
	f := newFixture(t, Options{})
	f.seed(t, tenantID, []string{"W"}, []string{"P"})
	f.stockIn(t, "W", "P", 5)
	query := commands.ListWarehouseInventoryQuery{TenantID: tenantID, WarehouseID: "W"}

	stock, err := f.svc.ListWarehouseInventory(context.Background(), query)
	require.NoError(t, err)
	require.Len(t, stock, 1)
	assert.Equal(t, 5, stock[0].Quantity)
	assert.Equal(t, "SKU-P", stock[0].SKU)
	assert.True(t, decimal.RequireFromString("9.99").Equal(stock[0].Price))

	f.stockIn(t, "W", "P", 2)

	stock, err = f.svc.ListWarehouseInventory(context.Background(), query)
	require.NoError(t, err)
	assert.Equal(t, 7, stock[0].Quantity)

	_, err = f.svc.ListWarehouseInventory(context.Background(), commands.ListWarehouseInventoryQuery{TenantID: "tenant-2", WarehouseID: "W"})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

// gatedCache parks the first Set after arming until release is closed
type gatedCache struct {
	*cache.InMemoryCache
	armed   atomic.Bool
	entered chan struct{}
	release chan struct{}
}

func newGatedCache() *gatedCache {
	return &gatedCache{
		InMemoryCache: cache.NewInMemoryCache(zap.NewNop()),
		entered:       make(chan struct{}),
		release:       make(chan struct{}),
	}
}

func (c *gatedCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if c.armed.CompareAndSwap(true, false) {
		close(c.entered)
		<-c.release
	}
	return c.InMemoryCache.Set(ctx, key, value, ttl)
}

func TestGetOrder_WriteDuringLoadIsNotCachedStale(t *testing.T) {
	f := newFixture(t, Options{})
	f.seed(t, tenantID, []string{"W"}, []string{"P"})
	f.stockIn(t, "W", "P", 5)
	order, err := createOrder(f.svc, commands.OrderLine{ProductID: "P", Quantity: 1})
	require.NoError(t, err)

	gated := newGatedCache()
	svc := New(f.scope, f.notifier, gated, Options{}, zap.NewNop())
	query := commands.GetOrderQuery{OrderID: order.ID, TenantID: tenantID}

	gated.armed.Store(true)
	done := make(chan error, 1)
	go func() {
		_, err := svc.GetOrder(context.Background(), query)
		done <- err
	}()

	// The reader has loaded the pending order and is about to cache it
	<-gated.entered
	_, err = svc.UpdateOrderStatus(context.Background(), commands.UpdateOrderStatusCommand{
		OrderID: order.ID, TenantID: tenantID, ActorID: actorID, Status: domain.StatusCancelled,
	})
	require.NoError(t, err)
	close(gated.release)
	require.NoError(t, <-done)

	fetched, err := svc.GetOrder(context.Background(), query)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, fetched.Status)
}

func TestListWarehouseInventory_WriteDuringLoadIsNotCachedStale(t *testing.T) {
	f := newFixture(t, Options{})
	f.seed(t, tenantID, []string{"W"}, []string{"P"})
	f.stockIn(t, "W", "P", 5)

	gated := newGatedCache()
	svc := New(f.scope, f.notifier, gated, Options{}, zap.NewNop())
	query := commands.ListWarehouseInventoryQuery{TenantID: tenantID, WarehouseID: "W"}

	gated.armed.Store(true)
	done := make(chan error, 1)
	go func() {
		_, err := svc.ListWarehouseInventory(context.Background(), query)
		done <- err
	}()

	<-gated.entered
	_, err := svc.UpdateStock(context.Background(), commands.UpdateStockCommand{
		ActorID: actorID, TenantID: tenantID, WarehouseID: "W", ProductID: "P", Quantity: 4, Type: domain.TransactionIn,
	})
	require.NoError(t, err)
	close(gated.release)
	require.NoError(t, <-done)

	stock, err := svc.ListWarehouseInventory(context.Background(), query)
	require.NoError(t, err)
	require.Len(t, stock, 1)
	assert.Equal(t, 9, stock[0].Quantity)
}

func TestGetOrder_NotFoundAndTenantScoped(t *testing.T) {
	f := newFixture(t, Options{})
	f.seed(t, tenantID, []string{"W"}, []string{"P"})
	f.stockIn(t, "W", "P", 5)
	order, err := createOrder(f.svc, commands.OrderLine{ProductID: "P", Quantity: 1})
	require.NoError(t, err)

	_, err = f.svc.GetOrder(context.Background(), commands.GetOrderQuery{OrderID: order.ID, TenantID: "tenant-2"})
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	_, err = f.svc.UpdateOrderStatus(context.Background(), commands.UpdateOrderStatusCommand{
		OrderID: "missing", TenantID: tenantID, Status: domain.StatusShipped,
	})
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	fetched, err := f.svc.GetOrder(context.Background(), commands.GetOrderQuery{OrderID: order.ID, TenantID: tenantID})
	require.NoError(t, err)
	require.Len(t, fetched.Items, 1)
	assert.Nil(t, fetched.Shipment)
}

func TestUpdateOrderStatus_PlainUpdateHasNoInventoryEffect(t *testing.T) {
	f := newFixture(t, Options{})
	f.seed(t, tenantID, []string{"W"}, []string{"P"})
	f.stockIn(t, "W", "P", 5)
	order, err := createOrder(f.svc, commands.OrderLine{ProductID: "P", Quantity: 2})
	require.NoError(t, err)
	entries := f.count(t, "stock_transactions")

	updated, err := f.svc.UpdateOrderStatus(context.Background(), commands.UpdateOrderStatusCommand{
		OrderID: order.ID, TenantID: tenantID, Status: domain.StatusShipped,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusShipped, updated.Status)
	assert.Equal(t, entries, f.count(t, "stock_transactions"))
	assert.Equal(t, 3, f.quantity(t, "W", "P"))

	// Forward progression is not enforced
	_, err = f.svc.UpdateOrderStatus(context.Background(), commands.UpdateOrderStatusCommand{
		OrderID: order.ID, TenantID: tenantID, Status: domain.StatusPending,
	})
	assert.NoError(t, err)

	_, err = f.svc.UpdateOrderStatus(context.Background(), commands.UpdateOrderStatusCommand{
		OrderID: order.ID, TenantID: tenantID, Status: "lost",
	})
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestReconciler_DetectsDrift(t *testing.T) {
	f := newFixture(t, Options{})
	f.seed(t, tenantID, []string{"W"}, []string{"P"})
	result := f.stockIn(t, "W", "P", 5)

	_, err := f.db.Conn().Exec(`UPDATE inventory_records SET quantity = 9 WHERE id = ?`, result.Record.ID)
	require.NoError(t, err)

	drifts, err := NewReconciler(f.scope, zap.NewNop()).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, drifts, 1)
	assert.Equal(t, result.Record.ID, drifts[0].RecordID)
	assert.Equal(t, 9, drifts[0].Quantity)
	assert.Equal(t, 5, drifts[0].JournalSum)
}
