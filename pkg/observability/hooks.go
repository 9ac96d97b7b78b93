// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about block transfers, object storage, and cache operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the core library dependency-free from observability frameworks
//   - Allows different backends (OpenTelemetry, Prometheus, DataDog, etc.)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetTransferHooks(&myTransferHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Transfer().OnUploadStart(ctx, fileID, blockCount)
//	// ... upload blocks ...
//	observability.Transfer().OnUploadComplete(ctx, fileID, blockCount, bytes, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Transfer Hooks
// =============================================================================

// TransferHooks receives events from file uploads and downloads.
type TransferHooks interface {
	// Upload events
	OnUploadStart(ctx context.Context, fileID string, blockCount int)
	OnBlockUploaded(ctx context.Context, fileID, blockID string, size int, duration time.Duration, err error)
	OnUploadComplete(ctx context.Context, fileID string, blockCount int, bytes int64, duration time.Duration, err error)

	// Download events
	OnDownloadStart(ctx context.Context, fileID string, blockCount int)
	OnDownloadComplete(ctx context.Context, fileID string, bytes int64, duration time.Duration, err error)

	// Verification events
	OnVerify(ctx context.Context, fileID string, blockCount, failed int, duration time.Duration)
}

// =============================================================================
// Object Store Hooks
// =============================================================================

// ObjectStoreHooks receives events from object store operations.
type ObjectStoreHooks interface {
	// OnPut records an object write.
	OnPut(ctx context.Context, backend, key string, size int, duration time.Duration, err error)

	// OnGet records an object read.
	OnGet(ctx context.Context, backend, key string, size int, duration time.Duration, err error)

	// OnDelete records an object deletion.
	OnDelete(ctx context.Context, backend, key string, err error)
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

// NoopTransferHooks is a no-op implementation of TransferHooks.
type NoopTransferHooks struct{}

func (NoopTransferHooks) OnUploadStart(context.Context, string, int) {}
func (NoopTransferHooks) OnBlockUploaded(context.Context, string, string, int, time.Duration, error) {
}
func (NoopTransferHooks) OnUploadComplete(context.Context, string, int, int64, time.Duration, error) {
}
func (NoopTransferHooks) OnDownloadStart(context.Context, string, int)                        {}
func (NoopTransferHooks) OnDownloadComplete(context.Context, string, int64, time.Duration, error) {}
func (NoopTransferHooks) OnVerify(context.Context, string, int, int, time.Duration)           {}

// NoopObjectStoreHooks is a no-op implementation of ObjectStoreHooks.
type NoopObjectStoreHooks struct{}

func (NoopObjectStoreHooks) OnPut(context.Context, string, string, int, time.Duration, error) {}
func (NoopObjectStoreHooks) OnGet(context.Context, string, string, int, time.Duration, error) {}
func (NoopObjectStoreHooks) OnDelete(context.Context, string, string, error)                  {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	transferHooks    TransferHooks    = NoopTransferHooks{}
	objectStoreHooks ObjectStoreHooks = NoopObjectStoreHooks{}
	cacheHooks       CacheHooks       = NoopCacheHooks{}
	hooksMu          sync.RWMutex
)

// SetTransferHooks registers custom transfer hooks.
// This should be called once at application startup before any transfers.
func SetTransferHooks(h TransferHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		transferHooks = h
	}
}

// SetObjectStoreHooks registers custom object store hooks.
// This should be called once at application startup before any store operations.
func SetObjectStoreHooks(h ObjectStoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		objectStoreHooks = h
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

// Transfer returns the registered transfer hooks.
func Transfer() TransferHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return transferHooks
}

// ObjectStore returns the registered object store hooks.
func ObjectStore() ObjectStoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return objectStoreHooks
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
	transferHooks = NoopTransferHooks{}
	objectStoreHooks = NoopObjectStoreHooks{}
	cacheHooks = NoopCacheHooks{}
}
