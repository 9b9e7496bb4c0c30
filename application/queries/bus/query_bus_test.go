package bus

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testQuery struct {
	invalid bool
}

func (q testQuery) Validate() error {
	if q.invalid {
		return errors.New("bad query")
	}
	return nil
}

// revisionQuery keys its cache entry by canvas revision, the way live
// canvas reads do.
type revisionQuery struct {
	canvasID string
	revision uint64
}

func (q revisionQuery) Validate() error { return nil }

func (q revisionQuery) CacheKey() string {
	return fmt.Sprintf("canvas:%s:rev:%d", q.canvasID, q.revision)
}

type fakeCache struct {
	entries map[string]interface{}
	sets    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]interface{})}
}

func (c *fakeCache) Get(ctx context.Context, key string) (interface{}, bool) {
	value, ok := c.entries[key]
	return value, ok
}

func (c *fakeCache) Set(ctx context.Context, key string, value interface{}, ttl int) error {
	c.entries[key] = value
	c.sets++
	return nil
}

type fakeMetrics struct {
	counts map[string]int
	timers int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{counts: make(map[string]int)}
}

func (m *fakeMetrics) StartTimer(metric, label string) Timer {
	m.timers++
	return noopTimer{}
}

func (m *fakeMetrics) Increment(metric, label string) {
	m.counts[metric+"/"+label]++
}

type noopTimer struct{}

func (noopTimer) Stop() {}

func TestQueryBus_Ask(t *testing.T) {
	queryBus := NewQueryBus()

	calls := 0
	require.NoError(t, queryBus.Register(testQuery{}, QueryHandlerFunc(func(ctx context.Context, query Query) (interface{}, error) {
		calls++
		return "answer", nil
	})))

	result, err := queryBus.Ask(context.Background(), testQuery{})
	require.NoError(t, err)
	assert.Equal(t, "answer", result)
	assert.Equal(t, 1, calls)

	t.Run("invalid query never reaches the handler", func(t *testing.T) {
		_, err := queryBus.Ask(context.Background(), testQuery{invalid: true})
		require.Error(t, err)
		assert.ErrorContains(t, err, "query validation failed")
		assert.Equal(t, 1, calls)
	})

	t.Run("unregistered query", func(t *testing.T) {
		_, err := queryBus.Ask(context.Background(), revisionQuery{})
		require.Error(t, err)
		assert.ErrorContains(t, err, "no handler registered")
	})

	t.Run("double registration", func(t *testing.T) {
		err := queryBus.Register(testQuery{}, QueryHandlerFunc(func(ctx context.Context, query Query) (interface{}, error) {
			return nil, nil
		}))
		assert.Error(t, err)
	})
}

func TestCachingMiddleware(t *testing.T) {
	cache := newFakeCache()
	caching := NewCachingMiddleware(cache, 60)

	calls := 0
	handler := caching.Wrap(QueryHandlerFunc(func(ctx context.Context, query Query) (interface{}, error) {
		calls++
		return "view", nil
	}))

	first, err := handler.Handle(context.Background(), revisionQuery{canvasID: "c1", revision: 1})
	require.NoError(t, err)
	assert.Equal(t, "view", first)
	assert.Equal(t, 1, calls)

	second, err := handler.Handle(context.Background(), revisionQuery{canvasID: "c1", revision: 1})
	require.NoError(t, err)
	assert.Equal(t, "view", second)
	assert.Equal(t, 1, calls, "the repeat ask is served from the cache")

	t.Run("a new revision misses", func(t *testing.T) {
		_, err := handler.Handle(context.Background(), revisionQuery{canvasID: "c1", revision: 2})
		require.NoError(t, err)
		assert.Equal(t, 2, calls)
	})

	t.Run("failures are not cached", func(t *testing.T) {
		failing := NewCachingMiddleware(newFakeCache(), 60)
		attempts := 0
		h := failing.Wrap(QueryHandlerFunc(func(ctx context.Context, query Query) (interface{}, error) {
			attempts++
			return nil, errors.New("store down")
		}))

		_, err := h.Handle(context.Background(), testQuery{})
		require.Error(t, err)
		_, err = h.Handle(context.Background(), testQuery{})
		require.Error(t, err)
		assert.Equal(t, 2, attempts)
	})
}

func TestMetricsMiddleware(t *testing.T) {
	metrics := newFakeMetrics()
	timed := NewMetricsMiddleware(metrics)

	handler := timed.Wrap(QueryHandlerFunc(func(ctx context.Context, query Query) (interface{}, error) {
		if q, ok := query.(testQuery); ok && q.invalid {
			return nil, errors.New("boom")
		}
		return "ok", nil
	}))

	_, err := handler.Handle(context.Background(), testQuery{})
	require.NoError(t, err)
	_, err = handler.Handle(context.Background(), testQuery{invalid: true})
	require.Error(t, err)

	assert.Equal(t, 2, metrics.counts["query_count/testQuery"])
	assert.Equal(t, 1, metrics.counts["query_success/testQuery"])
	assert.Equal(t, 1, metrics.counts["query_errors/testQuery"])
	assert.Equal(t, 2, metrics.timers)
}
