// Package observability provides hooks for metrics, tracing, and logging.
//
// Consumers register hooks at startup to receive events about token
// rendering, chain calls, and cache operations. Libraries never import a
// metrics backend; they call the registered hooks, which default to no-ops.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetRenderHooks(&myRenderHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Render().OnRenderStart(ctx, tokenID)
//	// ... extract, classify, composite ...
//	observability.Render().OnRenderComplete(ctx, tokenID, "procedural", duration, err)
//
// [LogHooks] implements every hook interface on top of a charmbracelet
// logger and is what the CLI installs in verbose mode.
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Render Hooks
// =============================================================================

// RenderHooks receives events from the artwork pipeline.
type RenderHooks interface {
	OnRenderStart(ctx context.Context, tokenID string)

	// OnRenderComplete reports the finished token. kind is "unique",
	// "procedural", or empty when classification failed.
	OnRenderComplete(ctx context.Context, tokenID, kind string, duration time.Duration, err error)
}

// =============================================================================
// Chain Hooks
// =============================================================================

// ChainHooks receives events from contract calls.
type ChainHooks interface {
	// OnCall records an outgoing eth_call for method.
	OnCall(ctx context.Context, method, tokenID string)

	// OnCallComplete records the outcome after all retries.
	OnCallComplete(ctx context.Context, method, tokenID string, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopRenderHooks is a no-op implementation of RenderHooks.
type NoopRenderHooks struct{}

func (NoopRenderHooks) OnRenderStart(context.Context, string)                                  {}
func (NoopRenderHooks) OnRenderComplete(context.Context, string, string, time.Duration, error) {}

// NoopChainHooks is a no-op implementation of ChainHooks.
type NoopChainHooks struct{}

func (NoopChainHooks) OnCall(context.Context, string, string)                               {}
func (NoopChainHooks) OnCallComplete(context.Context, string, string, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	renderHooks RenderHooks = NoopRenderHooks{}
	chainHooks  ChainHooks  = NoopChainHooks{}
	cacheHooks  CacheHooks  = NoopCacheHooks{}
	hooksMu     sync.RWMutex
)

// SetRenderHooks registers custom render hooks.
// This should be called once at application startup before any rendering.
func SetRenderHooks(h RenderHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		renderHooks = h
	}
}

// SetChainHooks registers custom chain hooks.
func SetChainHooks(h ChainHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		chainHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Render returns the registered render hooks.
func Render() RenderHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return renderHooks
}

// Chain returns the registered chain hooks.
func Chain() ChainHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return chainHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	renderHooks = NoopRenderHooks{}
	chainHooks = NoopChainHooks{}
	cacheHooks = NoopCacheHooks{}
}
