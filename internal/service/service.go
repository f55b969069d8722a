package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"ledger-service/internal/cache"
	"ledger-service/internal/events"
	"ledger-service/internal/repository"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "ledger-service/service"

// Options tunes ledger behaviour
type Options struct {
	// CompensateToSource restocks cancelled items into the warehouse they were taken from
	// instead of the lowest-id record for the product
	CompensateToSource bool
	CacheTTL           time.Duration
}

// Service runs every ledger, order and stock operation against one persistence handle
// and one notifier
type Service struct {
	scope    repository.TransactionScope
	notifier events.Notifier
	cache    cache.Cache
	opts     Options
	logger   *zap.Logger
	tracer   trace.Tracer

	// tenant id -> *atomic.Uint64, bumped before every post-commit invalidation
	generations sync.Map
}

// New creates a Service. cache may be nil to disable read-through caching.
func New(scope repository.TransactionScope, notifier events.Notifier, c cache.Cache, opts Options, logger *zap.Logger) *Service {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = time.Minute
	}
	return &Service{
		scope:    scope,
		notifier: notifier,
		cache:    c,
		opts:     opts,
		logger:   logger,
		tracer:   otel.Tracer(tracerName),
	}
}

func (s *Service) startSpan(ctx context.Context, name, tenantID string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(attribute.String("tenant.id", tenantID)))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// notifyChange registers the post-commit side effects of a write: the change
// notification and the tenant cache invalidation. Both are deduplicated per transaction.
func (s *Service) notifyChange(repos repository.Repositories, tenantID, domain string) {
	repos.AfterCommit("notify:"+tenantID+":"+domain, func() {
		s.notifier.NotifyDataChange(tenantID, domain)
	})

	if s.cache == nil {
		return
	}
	repos.AfterCommit("cache:"+tenantID, func() {
		s.generation(tenantID).Add(1)

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := s.cache.DeleteByPattern(ctx, cache.TenantPattern(tenantID)); err != nil {
			s.logger.Warn("Failed to invalidate tenant cache", zap.String("tenant_id", tenantID), zap.Error(err))
		}
	})
}

func (s *Service) generation(tenantID string) *atomic.Uint64 {
	v, _ := s.generations.LoadOrStore(tenantID, new(atomic.Uint64))
	return v.(*atomic.Uint64)
}

// cached reads key into dest, or runs load and stores its result.
// A write committed for the tenant while load ran may have been missed by load, so the
// stored value is dropped again when the tenant generation moved in the meantime.
func (s *Service) cached(ctx context.Context, tenantID, key string, dest interface{}, load func() error) error {
	if s.cache == nil {
		return load()
	}

	if err := cache.GetJSON(ctx, s.cache, key, dest); err == nil {
		s.logger.Debug("Cache hit", zap.String("key", key))
		return nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("Cache read failed", zap.String("key", key), zap.Error(err))
	}

	gen := s.generation(tenantID)
	start := gen.Load()

	if err := load(); err != nil {
		return err
	}

	if err := cache.SetJSON(ctx, s.cache, key, dest, s.opts.CacheTTL); err != nil {
		s.logger.Warn("Cache write failed", zap.String("key", key), zap.Error(err))
		return nil
	}

	if gen.Load() != start {
		if err := s.cache.Delete(ctx, key); err != nil {
			s.logger.Warn("Failed to drop stale cache entry", zap.String("key", key), zap.Error(err))
		}
	}
	return nil
}
