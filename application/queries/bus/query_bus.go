package bus

import (
	"context"
	"fmt"
	"reflect"
	"sync"
)

// Query is a read-only request. Validate runs before dispatch so
// handlers only ever see well-formed queries.
type Query interface {
	Validate() error
}

// QueryHandler answers one query type
type QueryHandler interface {
	Handle(ctx context.Context, query Query) (interface{}, error)
}

// QueryHandlerFunc adapts a function to the QueryHandler interface
type QueryHandlerFunc func(ctx context.Context, query Query) (interface{}, error)

func (f QueryHandlerFunc) Handle(ctx context.Context, query Query) (interface{}, error) {
	return f(ctx, query)
}

// QueryBus routes queries to handlers keyed by concrete type
type QueryBus struct {
	mu       sync.RWMutex
	handlers map[reflect.Type]QueryHandler
}

// NewQueryBus creates an empty query bus
func NewQueryBus() *QueryBus {
	return &QueryBus{handlers: make(map[reflect.Type]QueryHandler)}
}

// Register binds a handler to the query's concrete type. Registering a
// type twice is a wiring bug and fails loudly.
func (b *QueryBus) Register(queryType Query, handler QueryHandler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	t := reflect.TypeOf(queryType)
	if _, taken := b.handlers[t]; taken {
		return fmt.Errorf("query type %s already has a handler", t.Name())
	}
	b.handlers[t] = handler
	return nil
}

// Ask validates the query and dispatches it. Handler errors pass
// through untouched so the HTTP layer can classify them.
func (b *QueryBus) Ask(ctx context.Context, query Query) (interface{}, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("query validation failed: %w", err)
	}

	b.mu.RLock()
	handler, registered := b.handlers[reflect.TypeOf(query)]
	b.mu.RUnlock()
	if !registered {
		return nil, fmt.Errorf("no handler registered for query type %T", query)
	}

	return handler.Handle(ctx, query)
}

// Cache is the slice of the cache port the middleware needs
type Cache interface {
	Get(ctx context.Context, key string) (interface{}, bool)
	Set(ctx context.Context, key string, value interface{}, ttl int) error
}

// CacheKeyer lets a query provide its own cache key. Queries over live
// canvases should include the session revision so keys miss naturally
// after mutations.
type CacheKeyer interface {
	CacheKey() string
}

// CachingMiddleware serves repeated queries from the cache. Entries
// expire after ttl seconds; revision-scoped keys handle invalidation.
type CachingMiddleware struct {
	cache Cache
	ttl   int
}

// NewCachingMiddleware creates a caching wrap with a ttl in seconds
func NewCachingMiddleware(cache Cache, ttl int) *CachingMiddleware {
	return &CachingMiddleware{cache: cache, ttl: ttl}
}

// Wrap puts the cache in front of next
func (m *CachingMiddleware) Wrap(next QueryHandler) QueryHandler {
	return QueryHandlerFunc(func(ctx context.Context, query Query) (interface{}, error) {
		key := cacheKey(query)
		if hit, found := m.cache.Get(ctx, key); found {
			return hit, nil
		}

		result, err := next.Handle(ctx, query)
		if err != nil {
			return nil, err
		}

		m.cache.Set(ctx, key, result, m.ttl)
		return result, nil
	})
}

func cacheKey(query Query) string {
	if keyer, ok := query.(CacheKeyer); ok {
		return keyer.CacheKey()
	}
	return fmt.Sprintf("%T:%+v", query, query)
}

// Metrics is the slice of the metrics registry the middleware needs
type Metrics interface {
	StartTimer(metric, label string) Timer
	Increment(metric, label string)
}

// Timer measures one handler invocation
type Timer interface {
	Stop()
}

// MetricsMiddleware counts and times queries by type
type MetricsMiddleware struct {
	metrics Metrics
}

// NewMetricsMiddleware creates a metrics wrap
func NewMetricsMiddleware(metrics Metrics) *MetricsMiddleware {
	return &MetricsMiddleware{metrics: metrics}
}

// Wrap records call counts and latency around next, split by outcome
func (m *MetricsMiddleware) Wrap(next QueryHandler) QueryHandler {
	return QueryHandlerFunc(func(ctx context.Context, query Query) (interface{}, error) {
		label := reflect.TypeOf(query).Name()

		timer := m.metrics.StartTimer("query_duration", label)
		defer timer.Stop()
		m.metrics.Increment("query_count", label)

		result, err := next.Handle(ctx, query)
		if err != nil {
			m.metrics.Increment("query_errors", label)
			return nil, err
		}
		m.metrics.Increment("query_success", label)
		return result, nil
	})
}
