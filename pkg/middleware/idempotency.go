package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"ledger-service/internal/cache"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var ErrRequestIDNotFound = errors.New("request ID not found")

// StoredResponse is a successful write response kept for replay
type StoredResponse struct {
	Status int    `json:"status"`
	Body   []byte `json:"body"`
}

// RequestIDStore stores responses under replay keys (see ReplayKey)
type RequestIDStore interface {
	Store(ctx context.Context, key string, response StoredResponse, ttl time.Duration) error
	// Get returns ErrRequestIDNotFound for unknown or expired keys
	Get(ctx context.Context, key string) (StoredResponse, error)
}

// CacheRequestIDStore keeps responses in the shared cache, so replays work across instances
// when Redis is enabled
type CacheRequestIDStore struct {
	cache cache.Cache
}

func NewCacheRequestIDStore(c cache.Cache) *CacheRequestIDStore {
	return &CacheRequestIDStore{cache: c}
}

func (s *CacheRequestIDStore) Store(ctx context.Context, key string, response StoredResponse, ttl time.Duration) error {
	return cache.SetJSON(ctx, s.cache, cache.IdempotencyKey(key), response, ttl)
}

func (s *CacheRequestIDStore) Get(ctx context.Context, key string) (StoredResponse, error) {
	var response StoredResponse
	err := cache.GetJSON(ctx, s.cache, cache.IdempotencyKey(key), &response)
	if errors.Is(err, cache.ErrCacheMiss) {
		return StoredResponse{}, ErrRequestIDNotFound
	}
	return response, err
}

// InMemoryRequestIDStore is a process-local RequestIDStore
type InMemoryRequestIDStore struct {
	mu    sync.Mutex
	store map[string]requestIDEntry
}

type requestIDEntry struct {
	response  StoredResponse
	expiresAt time.Time
}

func NewInMemoryRequestIDStore() *InMemoryRequestIDStore {
	return &InMemoryRequestIDStore{store: make(map[string]requestIDEntry)}
}

func (s *InMemoryRequestIDStore) Store(ctx context.Context, requestID string, response StoredResponse, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for id, entry := range s.store {
		if now.After(entry.expiresAt) {
			delete(s.store, id)
		}
	}
	s.store[requestID] = requestIDEntry{response: response, expiresAt: now.Add(ttl)}
	return nil
}

func (s *InMemoryRequestIDStore) Get(ctx context.Context, requestID string) (StoredResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.store[requestID]
	if !exists {
		return StoredResponse{}, ErrRequestIDNotFound
	}
	if time.Now().After(entry.expiresAt) {
		delete(s.store, requestID)
		return StoredResponse{}, ErrRequestIDNotFound
	}
	return entry.response, nil
}

func isWrite(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	}
	return true
}

// ReplayKey scopes a request id to the authenticated caller and the exact request target,
// so the same id sent by another tenant, user, method or path never matches.
// It is empty for reads, for requests without an id and for unauthenticated requests.
func ReplayKey(c *gin.Context) string {
	requestID := GetRequestID(c)
	tenantID := c.GetString(TenantIDContextKey)
	userID := c.GetString(UserIDContextKey)
	if !isWrite(c.Request.Method) || requestID == "" || tenantID == "" || userID == "" {
		return ""
	}
	return strings.Join([]string{tenantID, userID, c.Request.Method, c.Request.URL.Path, requestID}, "|")
}

// IdempotencyMiddleware replays the stored response for a repeated write.
// It must run after AuthMiddleware.
func IdempotencyMiddleware(store RequestIDStore, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := ReplayKey(c)
		if key == "" {
			c.Next()
			return
		}

		cached, err := store.Get(c.Request.Context(), key)
		if err != nil {
			if !errors.Is(err, ErrRequestIDNotFound) {
				// Fail open
				logger.Warn("Error reading idempotency store",
					zap.String("request_id", GetRequestID(c)),
					zap.Error(err),
				)
			}
			c.Next()
			return
		}

		logger.Info("Duplicate request detected, returning stored response",
			zap.String("request_id", GetRequestID(c)),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		)
		c.Header("Idempotent-Replayed", "true")
		c.Data(cached.Status, "application/json; charset=utf-8", cached.Body)
		c.Abort()
	}
}

// StoreResponseMiddleware records successful write responses for IdempotencyMiddleware.
// It must run after AuthMiddleware.
func StoreResponseMiddleware(store RequestIDStore, logger *zap.Logger, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := ReplayKey(c)
		if key == "" {
			c.Next()
			return
		}

		writer := &responseWriter{ResponseWriter: c.Writer}
		c.Writer = writer

		c.Next()

		status := writer.Status()
		if status < 200 || status >= 300 || len(writer.body) == 0 {
			return
		}

		response := StoredResponse{Status: status, Body: writer.body}
		if err := store.Store(c.Request.Context(), key, response, ttl); err != nil {
			logger.Warn("Failed to store response for idempotency",
				zap.String("request_id", GetRequestID(c)),
				zap.Error(err),
			)
		}
	}
}

// responseWriter captures the response body
type responseWriter struct {
	gin.ResponseWriter
	body []byte
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.body = append(w.body, b...)
	return w.ResponseWriter.Write(b)
}

func (w *responseWriter) WriteString(s string) (int, error) {
	w.body = append(w.body, s...)
	return w.ResponseWriter.WriteString(s)
}
