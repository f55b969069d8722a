package database

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"ledger-service/internal/config"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// Dialect names the SQL driver in use
type Dialect string

const (
	DialectSQLite Dialect = "sqlite3"
	DialectMySQL  Dialect = "mysql"
)

// TimeLayout is a fixed-width UTC layout so stored timestamps sort lexically
const TimeLayout = "2006-01-02T15:04:05.000000000Z"

// DB wraps the shared *sql.DB. On SQLite every write transaction goes through a single
// writer: the mutex plus _txlock=immediate serialize read-modify-write sequences.
// On MySQL row locks (SELECT ... FOR UPDATE) do that job and the mutex is unused.
type DB struct {
	db      *sql.DB
	dialect Dialect
	dsn     string
	logger  *zap.Logger
	mu      sync.Mutex
}

// New opens the database selected by cfg.DBDriver and applies migrations
func New(cfg *config.Config, logger *zap.Logger) (*DB, error) {
	switch Dialect(cfg.DBDriver) {
	case DialectSQLite:
		return OpenSQLite(cfg.SQLitePath, logger)
	case DialectMySQL:
		return OpenMySQL(cfg.MySQLDSN(), logger)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.DBDriver)
	}
}

// OpenSQLite opens (or creates) a SQLite database file in WAL mode
func OpenSQLite(path string, logger *zap.Logger) (*DB, error) {
	dsn := path + "?_journal_mode=WAL&_foreign_keys=1&_busy_timeout=5000&_txlock=immediate"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	return initialize(db, DialectSQLite, dsn, logger)
}

// OpenMySQL opens a MySQL connection pool
func OpenMySQL(dsn string, logger *zap.Logger) (*DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(time.Hour)

	return initialize(db, DialectMySQL, dsn, logger)
}

func initialize(db *sql.DB, dialect Dialect, dsn string, logger *zap.Logger) (*DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	d := &DB{
		db:      db,
		dialect: dialect,
		dsn:     dsn,
		logger:  logger,
	}

	if err := d.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("Database ready", zap.String("driver", string(dialect)))
	return d, nil
}

// WithTx runs fn inside one transaction. Any error from fn rolls everything back.
// Driver errors are classified so lock contention surfaces as a domain conflict.
func (d *DB) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	if d.dialect == DialectSQLite {
		d.mu.Lock()
		defer d.mu.Unlock()
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return classify(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return classify(err)
	}

	if err := tx.Commit(); err != nil {
		return classify(fmt.Errorf("failed to commit transaction: %w", err))
	}
	return nil
}

// Conn returns the pool for reads outside a transaction
func (d *DB) Conn() *sql.DB {
	return d.db
}

func (d *DB) Dialect() Dialect {
	return d.dialect
}

// ForUpdate returns the row-locking suffix for SELECTs inside a transaction
func (d *DB) ForUpdate() string {
	if d.dialect == DialectMySQL {
		return " FOR UPDATE"
	}
	return ""
}

// InsertIgnore returns the dialect's insert-unless-duplicate prefix
func (d *DB) InsertIgnore() string {
	if d.dialect == DialectMySQL {
		return "INSERT IGNORE"
	}
	return "INSERT OR IGNORE"
}

// Ping checks the database connection
func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Stats returns connection pool statistics
func (d *DB) Stats() sql.DBStats {
	return d.db.Stats()
}

// CountRows returns the number of rows in one of the ledger tables
func (d *DB) CountRows(ctx context.Context, table string) (int, error) {
	switch table {
	case "products", "warehouses", "inventory_records", "stock_transactions", "orders", "order_items", "shipments":
	default:
		return 0, fmt.Errorf("unknown table: %s", table)
	}

	var count int
	if err := d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return count, nil
}

// Close closes the database connection
func (d *DB) Close() error {
	return d.db.Close()
}

// FormatTime renders t in the stored layout
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime parses a stored timestamp, returning the zero time for malformed input
func ParseTime(s string) time.Time {
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339Nano, s)
	}
	return t
}
