// Package extensions provides the hook and interceptor points that let
// deployments customize the log-to-overlay pipeline without forking the
// watcher. Hooks observe, interceptors transform or drop.
package extensions

import (
	"context"
	"fmt"
	"sync"
)

// HookPoint names a place in the pipeline where hooks run.
type HookPoint string

const (
	// Log pipeline hooks
	HookLogEntryParsed    HookPoint = "log_entry_parsed"
	HookLogActionsApplied HookPoint = "log_actions_applied"

	// Canvas lifecycle hooks
	HookCanvasImported HookPoint = "canvas_imported"
	HookCanvasDeleted  HookPoint = "canvas_deleted"

	// Gesture hooks
	HookGestureCommitted HookPoint = "gesture_committed"
)

// Hook is a function executed at a hook point.
type Hook func(ctx context.Context, data interface{}) error

// HookManager holds hook registrations per point.
type HookManager struct {
	mu    sync.RWMutex
	hooks map[HookPoint][]Hook
}

// NewHookManager creates an empty hook manager.
func NewHookManager() *HookManager {
	return &HookManager{
		hooks: make(map[HookPoint][]Hook),
	}
}

// Register adds a hook at a point. Hooks run in registration order.
func (m *HookManager) Register(point HookPoint, hook Hook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks[point] = append(m.hooks[point], hook)
}

// Execute runs all hooks at a point, stopping at the first failure.
func (m *HookManager) Execute(ctx context.Context, point HookPoint, data interface{}) error {
	m.mu.RLock()
	hooks := m.hooks[point]
	m.mu.RUnlock()

	for i, hook := range hooks {
		if err := hook(ctx, data); err != nil {
			return fmt.Errorf("hook %d at %s failed: %w", i, point, err)
		}
	}
	return nil
}

// ExecuteAsync runs all hooks at a point without waiting; failures are
// dropped. For notification-style hooks that must not stall the
// pipeline.
func (m *HookManager) ExecuteAsync(ctx context.Context, point HookPoint, data interface{}) {
	m.mu.RLock()
	hooks := m.hooks[point]
	m.mu.RUnlock()

	for _, hook := range hooks {
		go func(h Hook) {
			_ = h(ctx, data)
		}(hook)
	}
}

// Clear removes all hooks at a point.
func (m *HookManager) Clear(point HookPoint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.hooks, point)
}

// Interceptor transforms pipeline data. Returning keep=false drops the
// item from the pipeline without error.
type Interceptor interface {
	Intercept(ctx context.Context, data interface{}) (out interface{}, keep bool, err error)
}

// InterceptorFunc adapts a function to the Interceptor interface.
type InterceptorFunc func(ctx context.Context, data interface{}) (interface{}, bool, error)

// Intercept implements Interceptor.
func (f InterceptorFunc) Intercept(ctx context.Context, data interface{}) (interface{}, bool, error) {
	return f(ctx, data)
}

// InterceptorChain runs interceptors in order, feeding each one's
// output to the next.
type InterceptorChain struct {
	mu           sync.RWMutex
	interceptors []Interceptor
}

// NewInterceptorChain creates a chain from the given interceptors.
func NewInterceptorChain(interceptors ...Interceptor) *InterceptorChain {
	return &InterceptorChain{interceptors: interceptors}
}

// Append adds an interceptor to the end of the chain.
func (c *InterceptorChain) Append(interceptor Interceptor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.interceptors = append(c.interceptors, interceptor)
}

// Process runs data through the chain. A dropped item returns
// keep=false and a nil result.
func (c *InterceptorChain) Process(ctx context.Context, data interface{}) (interface{}, bool, error) {
	c.mu.RLock()
	interceptors := c.interceptors
	c.mu.RUnlock()

	var err error
	var keep bool
	for _, interceptor := range interceptors {
		data, keep, err = interceptor.Intercept(ctx, data)
		if err != nil {
			return nil, false, err
		}
		if !keep {
			return nil, false, nil
		}
	}
	return data, true, nil
}
