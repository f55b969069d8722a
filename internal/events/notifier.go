package events

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Notifier is told about committed data changes. Implementations must not block the caller.
type Notifier interface {
	NotifyDataChange(tenantID, domain string)
}

// NotifierStats is a snapshot of queue counters
type NotifierStats struct {
	Enqueued  uint64 `json:"enqueued"`
	Published uint64 `json:"published"`
	Dropped   uint64 `json:"dropped"`
	Failed    uint64 `json:"failed"`
	Pending   int    `json:"pending"`
}

// QueueNotifier buffers change events and publishes them from a fixed pool of workers.
// When the buffer is full new events are dropped.
type QueueNotifier struct {
	publisher EventPublisher
	logger    *zap.Logger
	queue     chan DataChangedEvent
	workers   int
	timeout   time.Duration

	wg       sync.WaitGroup
	stopOnce sync.Once
	cancel   context.CancelFunc

	enqueued  atomic.Uint64
	published atomic.Uint64
	dropped   atomic.Uint64
	failed    atomic.Uint64
}

func NewQueueNotifier(publisher EventPublisher, queueSize, workers int, logger *zap.Logger) *QueueNotifier {
	if queueSize <= 0 {
		queueSize = 1
	}
	if workers <= 0 {
		workers = 1
	}
	return &QueueNotifier{
		publisher: publisher,
		logger:    logger,
		queue:     make(chan DataChangedEvent, queueSize),
		workers:   workers,
		timeout:   10 * time.Second,
	}
}

// Start launches the worker pool. Workers exit once Stop has drained the queue.
func (n *QueueNotifier) Start(ctx context.Context) {
	ctx, n.cancel = context.WithCancel(ctx)

	for i := 0; i < n.workers; i++ {
		n.wg.Add(1)
		go n.worker(ctx, i)
	}

	n.logger.Info("Notification workers started",
		zap.Int("workers", n.workers),
		zap.Int("queue_size", cap(n.queue)),
	)
}

func (n *QueueNotifier) NotifyDataChange(tenantID, domain string) {
	event := NewDataChangedEvent(tenantID, domain)

	select {
	case n.queue <- event:
		n.enqueued.Add(1)
	default:
		n.dropped.Add(1)
		n.logger.Warn("Notification queue full, dropping event",
			zap.String("tenant_id", tenantID),
			zap.String("domain", domain),
		)
	}
}

func (n *QueueNotifier) worker(ctx context.Context, id int) {
	defer n.wg.Done()

	for event := range n.queue {
		n.publish(ctx, event, id)
	}
}

func (n *QueueNotifier) publish(ctx context.Context, event DataChangedEvent, worker int) {
	pubCtx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	if err := n.publisher.Publish(pubCtx, event); err != nil {
		n.failed.Add(1)
		n.logger.Error("Failed to publish change notification",
			zap.Int("worker", worker),
			zap.String("event_id", event.EventID),
			zap.String("tenant_id", event.TenantID),
			zap.String("domain", event.Domain),
			zap.Error(err),
		)
		return
	}
	n.published.Add(1)
}

// Stop closes the queue and waits for workers to publish what is left.
// NotifyDataChange must not be called after Stop.
func (n *QueueNotifier) Stop() {
	n.stopOnce.Do(func() {
		close(n.queue)
		n.wg.Wait()
		if n.cancel != nil {
			n.cancel()
		}
		n.logger.Info("Notification workers stopped",
			zap.Uint64("published", n.published.Load()),
			zap.Uint64("dropped", n.dropped.Load()),
		)
	})
}

func (n *QueueNotifier) Stats() NotifierStats {
	return NotifierStats{
		Enqueued:  n.enqueued.Load(),
		Published: n.published.Load(),
		Dropped:   n.dropped.Load(),
		Failed:    n.failed.Load(),
		Pending:   len(n.queue),
	}
}
