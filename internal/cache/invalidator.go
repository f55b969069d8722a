package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"ledger-service/internal/events"

	"go.uber.org/zap"
)

// Invalidator drops a tenant's cached read models when a DataChanged event arrives
type Invalidator struct {
	cache  Cache
	logger *zap.Logger
}

func NewInvalidator(cache Cache, logger *zap.Logger) *Invalidator {
	return &Invalidator{
		cache:  cache,
		logger: logger,
	}
}

// ProcessEvent ignores event types other than DataChanged
func (i *Invalidator) ProcessEvent(ctx context.Context, eventType string, data []byte) error {
	if eventType != events.EventTypeDataChanged {
		i.logger.Debug("Ignoring event", zap.String("event_type", eventType))
		return nil
	}

	var event events.DataChangedEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return fmt.Errorf("failed to decode DataChanged event: %w", err)
	}
	if event.TenantID == "" {
		return fmt.Errorf("event %s has no tenant", event.EventID)
	}

	return i.Invalidate(ctx, event.TenantID)
}

func (i *Invalidator) Invalidate(ctx context.Context, tenantID string) error {
	if err := i.cache.DeleteByPattern(ctx, TenantPattern(tenantID)); err != nil {
		return fmt.Errorf("failed to invalidate tenant cache: %w", err)
	}
	i.logger.Debug("Tenant cache invalidated", zap.String("tenant_id", tenantID))
	return nil
}
