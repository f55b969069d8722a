package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Data domains carried by DataChangedEvent
const (
	DomainInventory = "INVENTORY"
	DomainOrders    = "ORDERS"
)

// EventTypeDataChanged is the value of the event-type header on published messages
const EventTypeDataChanged = "DataChanged"

// DataChangedEvent tells downstream consumers that a tenant's data in one domain changed.
// It carries no payload: consumers refetch what they need.
type DataChangedEvent struct {
	EventID    string    `json:"eventId"`
	TenantID   string    `json:"tenantId"`
	Domain     string    `json:"domain"`
	OccurredAt time.Time `json:"occurredAt"`
}

func NewDataChangedEvent(tenantID, domain string) DataChangedEvent {
	return DataChangedEvent{
		EventID:    uuid.New().String(),
		TenantID:   tenantID,
		Domain:     domain,
		OccurredAt: time.Now().UTC(),
	}
}

// EventPublisher delivers change events to a broker
type EventPublisher interface {
	Publish(ctx context.Context, event DataChangedEvent) error
}

// retainedEvents bounds the in-memory history
const retainedEvents = 1000

// InMemoryEventPublisher keeps the most recent published events in memory. Used when
// Kafka is disabled and in tests.
type InMemoryEventPublisher struct {
	mu     sync.Mutex
	logger *zap.Logger
	events []DataChangedEvent
}

func NewInMemoryEventPublisher(logger *zap.Logger) *InMemoryEventPublisher {
	return &InMemoryEventPublisher{
		logger: logger,
		events: make([]DataChangedEvent, 0),
	}
}

func (p *InMemoryEventPublisher) Publish(ctx context.Context, event DataChangedEvent) error {
	p.mu.Lock()
	p.events = append(p.events, event)
	if len(p.events) > retainedEvents {
		p.events = p.events[len(p.events)-retainedEvents:]
	}
	p.mu.Unlock()

	p.logger.Debug("Event published (in-memory)",
		zap.String("event_id", event.EventID),
		zap.String("tenant_id", event.TenantID),
		zap.String("domain", event.Domain),
	)
	return nil
}

// Events returns a copy of everything published so far
func (p *InMemoryEventPublisher) Events() []DataChangedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]DataChangedEvent, len(p.events))
	copy(out, p.events)
	return out
}
