package handlers

import (
	"context"
	"database/sql"
	"net/http"

	"ledger-service/internal/database"
	"ledger-service/internal/events"
	"ledger-service/internal/service"
	"ledger-service/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var monitoredTables = []string{"products", "warehouses", "inventory_records", "stock_transactions", "orders"}

// Database is the part of *database.DB the monitoring endpoints read
type Database interface {
	Ping(ctx context.Context) error
	Stats() sql.DBStats
	CountRows(ctx context.Context, table string) (int, error)
	Dialect() database.Dialect
}

// NotifierStatser exposes notification queue counters
type NotifierStatser interface {
	Stats() events.NotifierStats
}

// DriftChecker runs a ledger reconciliation pass
type DriftChecker interface {
	Run(ctx context.Context) ([]service.Drift, error)
}

type MonitoringHandler struct {
	db         Database
	notifier   NotifierStatser
	reconciler DriftChecker
	logger     *zap.Logger
}

func NewMonitoringHandler(db Database, notifier NotifierStatser, reconciler DriftChecker, logger *zap.Logger) *MonitoringHandler {
	return &MonitoringHandler{
		db:         db,
		notifier:   notifier,
		reconciler: reconciler,
		logger:     logger,
	}
}

// Health handles GET /api/v1/health
// @Summary      Liveness check
// @Tags         monitoring
// @Produce      json
// @Success      200  {object}  HealthResponse
// @Router       /health [get]
func (h *MonitoringHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Service: "ledger-service"})
}

// GetStats godoc
// @Summary      Get service statistics
// @Description  Row counts per ledger table, connection pool usage and notification queue counters
// @Tags         monitoring
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  StatsResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /monitoring/stats [get]
func (h *MonitoringHandler) GetStats(c *gin.Context) {
	ctx := c.Request.Context()
	tables := make(map[string]int, len(monitoredTables))
	for _, table := range monitoredTables {
		count, err := h.db.CountRows(ctx, table)
		if err != nil {
			h.logger.Error("Failed to count rows", zap.String("table", table), zap.Error(err))
			_ = c.Error(errors.NewInternalError("failed to get statistics", err))
			return
		}
		tables[table] = count
	}

	pool := h.db.Stats()
	c.JSON(http.StatusOK, StatsResponse{
		Status:        "ok",
		Tables:        tables,
		OpenConns:     pool.OpenConnections,
		InUseConns:    pool.InUse,
		Notifications: h.notifier.Stats(),
	})
}

// GetDatabaseStatus godoc
// @Summary      Get database status
// @Tags         monitoring
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  DatabaseStatusResponse
// @Failure      503  {object}  ErrorResponse
// @Router       /monitoring/database/status [get]
func (h *MonitoringHandler) GetDatabaseStatus(c *gin.Context) {
	if err := h.db.Ping(c.Request.Context()); err != nil {
		h.logger.Error("Database ping failed", zap.Error(err))
		_ = c.Error(errors.NewServiceUnavailable("database connection failed", err))
		return
	}

	c.JSON(http.StatusOK, DatabaseStatusResponse{
		Status:    "ok",
		Connected: true,
		Driver:    string(h.db.Dialect()),
	})
}

// Reconcile godoc
// @Summary      Check the ledger against its journal
// @Description  Lists every record whose quantity differs from the signed sum of its journal entries
// @Tags         monitoring
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ReconcileResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /monitoring/reconcile [get]
func (h *MonitoringHandler) Reconcile(c *gin.Context) {
	drift, err := h.reconciler.Run(c.Request.Context())
	if err != nil {
		_ = c.Error(errors.NewInternalError("reconciliation failed", err))
		return
	}
	if drift == nil {
		drift = []service.Drift{}
	}

	c.JSON(http.StatusOK, ReconcileResponse{
		Consistent: len(drift) == 0,
		Drift:      drift,
	})
}
