package service

import (
	"context"
	"fmt"
	"time"

	"ledger-service/internal/repository"

	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Drift is a record whose quantity disagrees with its journal
type Drift struct {
	RecordID    string `json:"record_id"`
	WarehouseID string `json:"warehouse_id"`
	ProductID   string `json:"product_id"`
	Quantity    int    `json:"quantity"`
	JournalSum  int    `json:"journal_sum"`
}

// Reconciler checks that every record's quantity equals the signed sum of its journal
type Reconciler struct {
	scope  repository.TransactionScope
	logger *zap.Logger
	tracer trace.Tracer
}

func NewReconciler(scope repository.TransactionScope, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		scope:  scope,
		logger: logger,
		tracer: otel.Tracer(tracerName),
	}
}

// Run compares all records in one read pass. An empty result means the ledger is consistent.
func (r *Reconciler) Run(ctx context.Context) ([]Drift, error) {
	ctx, span := r.tracer.Start(ctx, "ledger.reconcile")
	var err error
	defer func() { endSpan(span, err) }()

	start := time.Now()
	drifts := make([]Drift, 0)
	var checked int

	// One transaction so records and sums come from the same snapshot
	err = r.scope.Execute(ctx, func(repos repository.Repositories) error {
		records, err := repos.Inventory().ListAll(ctx)
		if err != nil {
			return err
		}
		sums, err := repos.Journal().SumByRecord(ctx)
		if err != nil {
			return err
		}

		checked = len(records)
		for _, record := range records {
			sum := sums[record.ID]
			if sum != record.Quantity {
				drifts = append(drifts, Drift{
					RecordID:    record.ID,
					WarehouseID: record.WarehouseID,
					ProductID:   record.ProductID,
					Quantity:    record.Quantity,
					JournalSum:  sum,
				})
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reconciliation failed: %w", err)
	}

	span.SetAttributes(
		attribute.Int("ledger.records", checked),
		attribute.Int("ledger.drifts", len(drifts)),
	)

	if len(drifts) > 0 {
		for _, d := range drifts {
			r.logger.Error("Ledger drift detected",
				zap.String("record_id", d.RecordID),
				zap.String("warehouse_id", d.WarehouseID),
				zap.String("product_id", d.ProductID),
				zap.Int("quantity", d.Quantity),
				zap.Int("journal_sum", d.JournalSum),
			)
		}
	} else {
		r.logger.Info("Ledger reconciled",
			zap.Int("records", checked),
			zap.Duration("took", time.Since(start)),
		)
	}

	return drifts, nil
}

// Schedule registers Run on c. An empty spec leaves reconciliation unscheduled.
func (r *Reconciler) Schedule(c *cron.Cron, spec string) (cron.EntryID, error) {
	if spec == "" {
		return 0, nil
	}

	id, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if _, err := r.Run(ctx); err != nil {
			r.logger.Error("Scheduled reconciliation failed", zap.Error(err))
		}
	})
	if err != nil {
		return 0, fmt.Errorf("invalid reconcile schedule %q: %w", spec, err)
	}

	r.logger.Info("Reconciliation scheduled", zap.String("schedule", spec))
	return id, nil
}
